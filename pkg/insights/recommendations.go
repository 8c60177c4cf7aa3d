package insights

import (
	"fmt"
	"time"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/models"
)

// Recommendations runs the fixed battery of heuristics over one analysis.
// The order is stable: scheduling, pricing, marketing (only when triggered),
// retention, seasonal, geographic. Sections without data are skipped.
func Recommendations(a *models.Analysis) []string {
	if a == nil || a.Headline.TotalOrders == 0 {
		return nil
	}
	total := float64(a.Headline.TotalOrders)
	var out []string

	if len(a.DayPerformance) > 0 {
		best := a.DayPerformance[0]
		out = append(out, fmt.Sprintf("SCHEDULING: Focus on %s shows - they average %.1f orders per show",
			best.DayOfWeek, best.AvgOrdersPerShow))
	}

	free := 0
	for _, p := range a.Payments {
		if p.PaymentType == models.PaymentFree {
			free = p.Orders
		}
	}
	freeShare := float64(free) / total
	if freeShare > models.Heuristics.FreeTicketShareThreshold {
		out = append(out, fmt.Sprintf("PRICING: %.1f%% of tickets are free - consider reducing free tickets to boost revenue", freeShare*100))
	} else {
		out = append(out, fmt.Sprintf("PRICING: Good balance with %.1f%% free tickets", freeShare*100))
	}

	sameDayShare := float64(a.Headline.SameDayPurchases) / total
	if sameDayShare > models.Heuristics.SameDayShareThreshold {
		out = append(out, fmt.Sprintf("MARKETING: %.1f%% are same-day purchases - promote earlier for better planning", sameDayShare*100))
	}

	returningRevenue, revenue := 0.0, 0.0
	for _, s := range a.Acquisition {
		revenue += s.Revenue
		if s.CustomerType == aggregate.CustomerReturning {
			returningRevenue = s.Revenue
		}
	}
	if len(a.Acquisition) > 0 {
		share := 0.0
		if revenue > 0 {
			share = returningRevenue / revenue
		}
		out = append(out, fmt.Sprintf("RETENTION: %.1f%% of revenue from returning customers, %.1f%% repeat rate - focus on loyalty programs",
			share*100, a.Headline.ReturningRate*100))
	}

	if best, ok := busiestMonth(a.Seasonal); ok {
		out = append(out, fmt.Sprintf("SEASONAL: %s shows perform best - consider more shows in this month", time.Month(best.Month)))
	}

	for _, s := range a.TopStates {
		if s.Key == "Unknown" {
			continue
		}
		out = append(out, fmt.Sprintf("GEOGRAPHIC: %.1f%% of orders from %s - consider targeted marketing in neighbouring states",
			float64(s.Count)/total*100, s.Key))
		break
	}
	return out
}

// busiestMonth picks the event month with the most orders, earliest on ties.
func busiestMonth(months []models.MonthSummary) (models.MonthSummary, bool) {
	var best models.MonthSummary
	found := false
	for _, m := range months {
		if !found || m.Orders > best.Orders {
			best, found = m, true
		}
	}
	return best, found
}
