// Package clients scores per-client revenue health and portfolio
// concentration risk from income records.
package clients

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Trend classifications for a client's revenue direction.
const (
	TrendGrowing   = "growing"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

const (
	inactiveHighDays   = 90
	inactiveMediumDays = 60
	minTrendTxns       = 4
	trendBandPercent   = 10

	scoreInactive  = 90
	scoreDeclining = 70
	scoreBaseline  = 50

	topConcentration = 3
)

// InactiveDays is a day count that may be infinite when a client has no
// transactions at all. Infinity marshals as JSON null.
type InactiveDays float64

func (d InactiveDays) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}

// Profile is the per-client revenue and risk summary.
type Profile struct {
	ClientID                 string       `json:"clientId"`
	Name                     string       `json:"name"`
	TotalRevenue             float64      `json:"totalRevenue"`
	TotalTransactions        int          `json:"totalTransactions"`
	AvgTransactionValue      float64      `json:"avgTransactionValue"`
	DaysSinceLastTransaction InactiveDays `json:"daysSinceLastTransaction"`
	Trend                    string       `json:"trend"`
	RiskLevel                string       `json:"riskLevel"`
	IsAtRisk                 bool         `json:"isAtRisk"`
}

// AtRiskClient ranks one risky client with the reasons behind the score.
type AtRiskClient struct {
	ClientID  string   `json:"clientId"`
	Name      string   `json:"name"`
	RiskScore int      `json:"riskScore"`
	Reasons   []string `json:"reasons"`
}

// RiskSummary captures portfolio-level concentration and the ranked at-risk
// list. TopClientDependency is the top client's revenue share; concentration
// is the top-3 share and is never below the top-1 share.
type RiskSummary struct {
	TopClientDependency     float64        `json:"topClientDependency"`
	ClientConcentrationRisk float64        `json:"clientConcentrationRisk"`
	AtRiskClients           []AtRiskClient `json:"atRiskClients"`
}

// BusinessTrends summarizes the whole book's direction.
type BusinessTrends struct {
	MonthlyGrowthPercent float64 `json:"monthlyGrowthPercent"`
	AvgTransactionTrend  string  `json:"avgTransactionTrend"`
	MonthsAnalyzed       int     `json:"monthsAnalyzed"`
}

// AnalyzeClients builds a Profile for every client using the default
// heuristic resolver. Clients with no matched transactions are forced
// high-risk with an infinite inactivity.
func AnalyzeClients(income []model.IncomeRecord, clientList []model.ClientRecord, now time.Time) []Profile {
	return AnalyzeClientsWith(HeuristicResolver{}, income, clientList, now)
}

// AnalyzeClientsWith is AnalyzeClients with an explicit matching strategy.
func AnalyzeClientsWith(resolver Resolver, income []model.IncomeRecord, clientList []model.ClientRecord, now time.Time) []Profile {
	profiles := make([]Profile, 0, len(clientList))
	for _, client := range clientList {
		var txns []model.IncomeRecord
		for _, r := range income {
			if r.Date.Valid() && resolver.Matches(client, r) {
				txns = append(txns, r)
			}
		}
		profiles = append(profiles, buildProfile(client, txns, now))
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].TotalRevenue > profiles[j].TotalRevenue
	})
	return profiles
}

func buildProfile(client model.ClientRecord, txns []model.IncomeRecord, now time.Time) Profile {
	profile := Profile{
		ClientID:                 client.ClientID,
		Name:                     client.Name,
		Trend:                    TrendStable,
		DaysSinceLastTransaction: InactiveDays(math.Inf(1)),
	}
	if len(txns) == 0 {
		profile.RiskLevel = RiskHigh
		profile.IsAtRisk = true
		return profile
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Time.Before(txns[j].Date.Time)
	})
	var total float64
	for _, r := range txns {
		total += model.SafeAmount(r.Amount)
	}
	last := txns[len(txns)-1].Date.Time
	days := math.Floor(now.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}

	profile.TotalRevenue = round2(total)
	profile.TotalTransactions = len(txns)
	profile.AvgTransactionValue = round2(total / float64(len(txns)))
	profile.DaysSinceLastTransaction = InactiveDays(days)
	profile.Trend = classifyClientTrend(txns)

	switch {
	case days > inactiveHighDays:
		profile.RiskLevel = RiskHigh
	case days >= inactiveMediumDays || profile.Trend == TrendDeclining:
		profile.RiskLevel = RiskMedium
	default:
		profile.RiskLevel = RiskLow
	}
	profile.IsAtRisk = profile.RiskLevel != RiskLow
	return profile
}

// classifyClientTrend compares the mean of the most recent half of a client's
// transactions to the mean of the older half. Differences inside a 10% band
// count as stable.
func classifyClientTrend(txns []model.IncomeRecord) string {
	if len(txns) < minTrendTxns {
		return TrendStable
	}
	mid := len(txns) / 2
	older := meanAmount(txns[:mid])
	recent := meanAmount(txns[mid:])
	if older <= 0 {
		if recent > 0 {
			return TrendGrowing
		}
		return TrendStable
	}
	change := (recent - older) / older * 100
	switch {
	case change > trendBandPercent:
		return TrendGrowing
	case change < -trendBandPercent:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// AssessRisks computes concentration shares over the profiled clients and
// ranks the at-risk ones.
func AssessRisks(profiles []Profile) RiskSummary {
	var summary RiskSummary
	var total float64
	for _, p := range profiles {
		total += p.TotalRevenue
	}

	byRevenue := make([]Profile, len(profiles))
	copy(byRevenue, profiles)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return byRevenue[i].TotalRevenue > byRevenue[j].TotalRevenue
	})
	if total > 0 && len(byRevenue) > 0 {
		summary.TopClientDependency = round2(byRevenue[0].TotalRevenue / total * 100)
		var topN float64
		for i := 0; i < len(byRevenue) && i < topConcentration; i++ {
			topN += byRevenue[i].TotalRevenue
		}
		summary.ClientConcentrationRisk = round2(topN / total * 100)
	}

	for _, p := range profiles {
		if !p.IsAtRisk {
			continue
		}
		entry := AtRiskClient{ClientID: p.ClientID, Name: p.Name, RiskScore: scoreBaseline}
		switch {
		case p.TotalTransactions == 0:
			entry.RiskScore = scoreInactive
			entry.Reasons = append(entry.Reasons, "No revenue recorded from this client")
		case float64(p.DaysSinceLastTransaction) > inactiveHighDays:
			entry.RiskScore = scoreInactive
			entry.Reasons = append(entry.Reasons,
				fmt.Sprintf("No transactions in %.0f days", float64(p.DaysSinceLastTransaction)))
		case p.Trend == TrendDeclining:
			entry.RiskScore = scoreDeclining
			entry.Reasons = append(entry.Reasons, "Revenue from this client is declining")
		default:
			entry.Reasons = append(entry.Reasons,
				fmt.Sprintf("No transactions in %.0f days", float64(p.DaysSinceLastTransaction)))
		}
		summary.AtRiskClients = append(summary.AtRiskClients, entry)
	}
	sort.SliceStable(summary.AtRiskClients, func(i, j int) bool {
		return summary.AtRiskClients[i].RiskScore > summary.AtRiskClients[j].RiskScore
	})
	return summary
}

// CalculateBusinessTrends derives overall monthly revenue growth and the
// average-transaction-value direction from the earliest versus latest month,
// normalized by the number of elapsed months.
func CalculateBusinessTrends(income []model.IncomeRecord) BusinessTrends {
	entries := make([]timeseries.Entry, 0, len(income))
	for _, r := range income {
		entries = append(entries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	months := timeseries.GroupByPeriod(entries, timeseries.GranularityMonth)
	trends := BusinessTrends{AvgTransactionTrend: TrendStable, MonthsAnalyzed: len(months)}
	if len(months) < 2 {
		return trends
	}

	earliest, latest := months[0], months[len(months)-1]
	elapsed := float64(len(months) - 1)
	if earliest.Total > 0 {
		trends.MonthlyGrowthPercent = round2((latest.Total - earliest.Total) / earliest.Total * 100 / elapsed)
	}

	earliestAvg := avgValue(earliest)
	latestAvg := avgValue(latest)
	if earliestAvg > 0 {
		change := (latestAvg - earliestAvg) / earliestAvg * 100
		switch {
		case change > trendBandPercent:
			trends.AvgTransactionTrend = TrendGrowing
		case change < -trendBandPercent:
			trends.AvgTransactionTrend = TrendDeclining
		}
	}
	return trends
}

func avgValue(b timeseries.Bucket) float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Total / float64(b.Count)
}

func meanAmount(txns []model.IncomeRecord) float64 {
	if len(txns) == 0 {
		return 0
	}
	var total float64
	for _, r := range txns {
		total += model.SafeAmount(r.Amount)
	}
	return total / float64(len(txns))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
