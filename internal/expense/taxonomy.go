// Package expense classifies free-text expense reasons into a category
// taxonomy and generates actionable spending suggestions.
package expense

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a spend classification. Curated categories come from the rule
// table below; anything unmatched becomes an inferred category named after
// its own title-cased reason text.
type Category string

const (
	CategorySoftware     Category = "Software & Subscriptions"
	CategoryMarketing    Category = "Marketing & Advertising"
	CategoryOffice       Category = "Office & Supplies"
	CategoryRent         Category = "Rent & Facilities"
	CategoryUtilities    Category = "Utilities"
	CategoryTravel       Category = "Travel"
	CategoryMeals        Category = "Meals & Entertainment"
	CategoryPayroll      Category = "Payroll & Contractors"
	CategoryProfessional Category = "Professional Services"
	CategoryInsurance    Category = "Insurance"
	CategoryEquipment    Category = "Equipment & Hardware"
	CategoryShipping     Category = "Shipping & Logistics"
	CategoryTaxes        Category = "Taxes & Fees"
	CategoryEducation    Category = "Education & Training"
)

// categoryRule binds a curated category to the keywords that select it.
// Rules are evaluated in order; the first keyword hit wins.
type categoryRule struct {
	category Category
	keywords []string
}

var categoryRules = []categoryRule{
	{CategoryPayroll, []string{"payroll", "salary", "salaries", "wages", "contractor", "freelancer", "bonus"}},
	{CategoryRent, []string{"rent", "lease", "coworking", "office space", "facility"}},
	{CategorySoftware, []string{"software", "subscription", "saas", "license", "hosting", "cloud", "domain", "app "}},
	{CategoryMarketing, []string{"marketing", "advertis", "ads", "adwords", "facebook", "instagram", "seo", "campaign", "promotion"}},
	{CategoryUtilities, []string{"electric", "water bill", "gas bill", "internet", "phone", "utility", "utilities", "mobile plan"}},
	{CategoryTravel, []string{"travel", "flight", "hotel", "airfare", "taxi", "uber", "lyft", "train", "mileage", "parking"}},
	{CategoryMeals, []string{"lunch", "dinner", "coffee", "restaurant", "meal", "catering", "entertainment"}},
	{CategoryInsurance, []string{"insurance", "premium", "liability cover"}},
	{CategoryProfessional, []string{"legal", "lawyer", "accountant", "accounting", "bookkeep", "consultant", "consulting", "audit"}},
	{CategoryEquipment, []string{"laptop", "computer", "monitor", "printer", "hardware", "equipment", "machine", "furniture"}},
	{CategoryShipping, []string{"shipping", "postage", "courier", "freight", "delivery"}},
	{CategoryTaxes, []string{"tax", "vat", "gst", "bank fee", "transaction fee", "government fee"}},
	{CategoryEducation, []string{"training", "course", "conference", "workshop", "seminar", "certification", "book"}},
	{CategoryOffice, []string{"office", "supplies", "stationery", "paper", "ink", "cleaning"}},
}

var titleCaser = cases.Title(language.English)

// Classification is the result of categorizing a reason string. Inferred
// marks fallback categories derived from the reason text itself rather than
// the curated taxonomy.
type Classification struct {
	Category Category
	Inferred bool
}

// Classify maps a free-text expense reason onto the taxonomy. Empty or
// whitespace-only reasons land in Office & Supplies, the catch-all the
// original books used for uncategorized spend.
func Classify(reason string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(reason))
	if normalized == "" {
		return Classification{Category: CategoryOffice}
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return Classification{Category: rule.category}
			}
		}
	}
	return Classification{Category: Category(titleCaser.String(normalized)), Inferred: true}
}

// CategoryName is a convenience wrapper returning just the category label.
func CategoryName(reason string) string {
	return string(Classify(reason).Category)
}
