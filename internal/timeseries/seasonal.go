package timeseries

// minSeasonalPeriods is the minimum number of monthly buckets before seasonal
// extraction is attempted; below this any pattern is more likely noise.
const minSeasonalPeriods = 6

// minSeasonalVariance guards against false seasonality on thin data: the
// variance across the 12 indices must exceed this before the result is
// treated as a real seasonal pattern.
const minSeasonalVariance = 0.01

// SeasonalIndices extracts a per-calendar-month multiplier from monthly
// buckets: the ratio of each month's historical average to the overall mean.
// Months with no history get index 1. Returns nil when there are fewer than
// 6 periods, the overall mean is 0, or the indices are too flat to count as
// seasonality.
func SeasonalIndices(buckets []Bucket) *[12]float64 {
	if len(buckets) < minSeasonalPeriods {
		return nil
	}

	var sums [12]float64
	var counts [12]int
	var total float64
	for _, b := range buckets {
		m := int(b.Start.Month()) - 1
		sums[m] += b.Total
		counts[m]++
		total += b.Total
	}
	overallMean := total / float64(len(buckets))
	if overallMean == 0 {
		return nil
	}

	var indices [12]float64
	for m := 0; m < 12; m++ {
		if counts[m] == 0 {
			indices[m] = 1
			continue
		}
		indices[m] = (sums[m] / float64(counts[m])) / overallMean
	}

	if indexVariance(indices) <= minSeasonalVariance {
		return nil
	}
	return &indices
}

func indexVariance(indices [12]float64) float64 {
	var mean float64
	for _, v := range indices {
		mean += v
	}
	mean /= 12

	var sumSq float64
	for _, v := range indices {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / 12
}
