package anomaly

// recommendations maps detector type and severity tier to advice text. Tone
// scales with severity: critical entries push immediate action, medium
// entries suggest a review.
var recommendations = map[string]map[string]string{
	TypeSpendingSpike: {
		SeverityCritical: "Spending more than tripled against your recent average. Freeze discretionary purchases and review every large transaction this month.",
		SeverityHigh:     "Spending is well above your recent average. Identify the transactions driving the jump before committing to new expenses.",
		SeverityMedium:   "Spending is running above your recent average. Worth a quick review of this month's larger purchases.",
	},
	TypeCategorySpike: {
		SeverityHigh:   "This category more than doubled its usual spend. Check for duplicate charges or an unplanned purchase, and decide whether the new level is intentional.",
		SeverityMedium: "This category is noticeably above its usual level. Scan its recent transactions for anything unexpected.",
	},
	TypeIncomeDrop: {
		SeverityCritical: "Income fell sharply below your recent average. Contact your key clients, chase outstanding invoices, and line up pipeline now.",
		SeverityHigh:     "Income is well below your recent average. Follow up on unpaid invoices and check whether regular clients have gone quiet.",
		SeverityMedium:   "Income dipped below your recent average. Keep an eye on it; one soft month is normal, two is a pattern.",
	},
	TypeFrequencyChange: {
		SeverityHigh: "You booked far fewer income transactions than last month. Check whether invoices went out on schedule and whether any regular client paused.",
	},
	TypeGrowthImbalance: {
		SeverityHigh: "Spending is growing materially faster than income. Rebalance by capping expense growth until revenue catches up.",
	},
	TypeMarginSqueeze: {
		SeverityCritical: "Margins are close to zero. Reprice your work or cut your largest cost line immediately.",
		SeverityHigh:     "Margins compressed significantly. Review pricing and your top three expense categories.",
		SeverityMedium:   "Margins are drifting down. Track the trend next month and look at your biggest cost drivers.",
	},
}

func recommendationFor(alertType, severity string) string {
	if bySeverity, ok := recommendations[alertType]; ok {
		if text, ok := bySeverity[severity]; ok {
			return text
		}
		// Fall back to the mildest entry for the type.
		for _, tier := range []string{SeverityMedium, SeverityHigh, SeverityCritical} {
			if text, ok := bySeverity[tier]; ok {
				return text
			}
		}
	}
	return "Review the underlying transactions for this period."
}
