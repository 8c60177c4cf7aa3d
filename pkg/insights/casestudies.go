// Package insights turns aggregated tables into ranked views and
// recommendation strings.
package insights

import (
	"sort"

	"github.com/pkg/errors"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/models"
)

// Case study kinds.
const (
	KindSpend     = "spend"
	KindFrequency = "frequency"
	KindVariety   = "variety"
	KindLifetime  = "lifetime"
	KindAOV       = "aov"
)

// Kinds lists the case study kinds in display order.
var Kinds = []string{KindSpend, KindFrequency, KindLifetime, KindVariety, KindAOV}

// Titles used by the console and dashboard.
var KindTitles = map[string]string{
	KindSpend:     "Highest spenders",
	KindFrequency: "Most frequent",
	KindLifetime:  "Longest relationship",
	KindVariety:   "Most diverse attendance",
	KindAOV:       "Highest average order",
}

var caseMetric = map[string]func(c *models.CustomerSummary) float64{
	KindSpend:     func(c *models.CustomerSummary) float64 { return c.TotalSpent },
	KindFrequency: func(c *models.CustomerSummary) float64 { return float64(c.TotalOrders) },
	KindVariety:   func(c *models.CustomerSummary) float64 { return float64(c.DaysVariety) },
	KindLifetime:  func(c *models.CustomerSummary) float64 { return float64(c.LifetimeDays) },
	KindAOV:       func(c *models.CustomerSummary) float64 { return c.AvgOrderValue },
}

// CaseStudy ranks the repeat customers by one metric, highest first, and keeps
// the first n. Ties go to the smaller customer id.
func CaseStudy(customers []models.CustomerSummary, kind string, n int) ([]models.CustomerSummary, error) {
	return rank(customers, kind, n, false)
}

// Lifecycles ranks repeat customers by relationship length; ascending puts the
// shortest first.
func Lifecycles(customers []models.CustomerSummary, n int, ascending bool) []models.CustomerSummary {
	out, _ := rank(customers, KindLifetime, n, ascending)
	return out
}

// CaseStudies builds every kind at once.
func CaseStudies(customers []models.CustomerSummary, n int) map[string][]models.CustomerSummary {
	out := make(map[string][]models.CustomerSummary, len(Kinds))
	for _, k := range Kinds {
		out[k], _ = rank(customers, k, n, false)
	}
	return out
}

func rank(customers []models.CustomerSummary, kind string, n int, ascending bool) ([]models.CustomerSummary, error) {
	metric, ok := caseMetric[kind]
	if !ok {
		return nil, errors.Errorf("unknown case study kind %q", kind)
	}
	repeat := aggregate.RepeatCustomers(customers)
	sort.SliceStable(repeat, func(i, j int) bool {
		a, b := metric(&repeat[i]), metric(&repeat[j])
		if a != b {
			if ascending {
				return a < b
			}
			return a > b
		}
		return repeat[i].CustomerID < repeat[j].CustomerID
	})
	if n > 0 && len(repeat) > n {
		repeat = repeat[:n]
	}
	return repeat, nil
}
