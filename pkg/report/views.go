package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/insights"
	"ticket-analytics/pkg/models"
)

// Shows prints the best and worst shows of a ranked table, then the weekday
// and booking-window breakdowns.
func Shows(w io.Writer, ranked []models.ShowSummary, perf []models.DayPerformance, windows []models.BookingWindowSummary, n int) {
	title(w, "SHOW-LEVEL ANALYSIS")
	line(w, "Shows analysed: %s", count(len(ranked)))

	heading(w, fmt.Sprintf("TOP %d SHOWS", n))
	for _, s := range head(ranked, n) {
		showLine(w, s)
	}
	if len(ranked) > n {
		heading(w, fmt.Sprintf("BOTTOM %d SHOWS", n))
		for _, s := range ranked[max(len(ranked)-n, n):] {
			showLine(w, s)
		}
	}

	if len(perf) > 0 {
		heading(w, "DAY PERFORMANCE")
		for _, d := range perf {
			line(w, "%-10s %s shows, %.1f orders/show, %s/show", d.DayOfWeek, count(d.Shows), d.AvgOrdersPerShow, money(d.AvgRevenuePerShow))
		}
	}
	if len(windows) > 0 {
		heading(w, "BOOKING WINDOWS")
		for _, b := range windows {
			line(w, "%-10s %s orders, %s revenue, AOV %s", b.Window, count(b.Orders), money(b.Revenue), money(b.AvgOrderValue))
		}
	}
}

func showLine(w io.Writer, s models.ShowSummary) {
	line(w, "%s %-9s %s orders, %s, %s same-day, %s free, top state %s (%s)",
		s.EventDate, s.DayOfWeek, count(s.Orders), money(s.Revenue),
		pct(s.SameDayRate), pct(s.FreeRate), s.TopState, pct(s.StateConcentration))
}

// CaseStudy prints one ranked list of repeat customers.
func CaseStudy(w io.Writer, name string, customers []models.CustomerSummary) {
	heading(w, strings.ToUpper(name))
	if len(customers) == 0 {
		line(w, "No customers with %d+ orders", models.Heuristics.RepeatOrderThreshold)
		return
	}
	for i, c := range customers {
		line(w, "%d. %s: %s orders, %s tickets, %s spent, %d days, attends %s",
			i+1, c.CustomerID, count(c.TotalOrders), count(c.TotalTickets), money(c.TotalSpent),
			c.LifetimeDays, strings.Join(c.DaysAttended, "/"))
	}
}

// CaseStudies prints every case study kind in display order.
func CaseStudies(w io.Writer, studies map[string][]models.CustomerSummary) {
	title(w, "REPEAT CUSTOMER CASE STUDIES")
	for _, k := range insights.Kinds {
		CaseStudy(w, insights.KindTitles[k], studies[k])
	}
}

// Recommendations prints the numbered recommendation list.
func Recommendations(w io.Writer, recs []string) {
	title(w, "ACTIONABLE RECOMMENDATIONS FOR SHOWRUNNERS")
	for i, r := range recs {
		line(w, "%d. %s", i+1, r)
	}
}

// WeekOverWeek prints the show series of one weekday with its changes.
func WeekOverWeek(w io.Writer, wow *models.WeekOverWeek) {
	heading(w, "WEEK-OVER-WEEK: "+strings.ToUpper(wow.DayOfWeek))
	for _, s := range wow.Shows {
		line(w, "%s (W%02d) %s orders %s, %s revenue %s",
			s.EventDate, s.Week, count(s.Orders), change(s.OrdersChange), money(s.Revenue), change(s.RevenueChange))
	}
	line(w, "Average growth: orders %+.1f%%, revenue %+.1f%%", wow.AvgOrderGrowth, wow.AvgRevenueGrowth)
}

func change(v *float64) string {
	if v == nil {
		return "(n/a)"
	}
	return fmt.Sprintf("(%+.1f%%)", *v)
}

// Heatmap prints orders per ISO week (rows) and weekday tag (columns).
func Heatmap(w io.Writer, cells []models.HeatmapCell) {
	heading(w, "WEEKLY HEATMAP")
	if len(cells) == 0 {
		return
	}
	var weeks []int
	var days []string
	seenDay := map[string]bool{}
	grid := map[int]map[string]int{}
	for _, c := range cells {
		if grid[c.Week] == nil {
			grid[c.Week] = map[string]int{}
			weeks = append(weeks, c.Week)
		}
		grid[c.Week][c.DayOfWeek] = c.Orders
		if !seenDay[c.DayOfWeek] {
			seenDay[c.DayOfWeek] = true
			days = append(days, c.DayOfWeek)
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return aggregate.DayRank(days[i], days[j]) })

	var b strings.Builder
	b.WriteString("   Week")
	for _, d := range days {
		fmt.Fprintf(&b, " %9s", abbrev(d))
	}
	fmt.Fprintln(w, b.String())
	for _, wk := range weeks {
		b.Reset()
		fmt.Fprintf(&b, "   W%02d ", wk)
		for _, d := range days {
			fmt.Fprintf(&b, " %9s", count(grid[wk][d]))
		}
		fmt.Fprintln(w, b.String())
	}
}

func abbrev(day string) string {
	if len(day) > 9 {
		return day[:9]
	}
	return day
}

// Series prints a metric series with its smoothed value and anomaly flag.
func Series(w io.Writer, metric string, labels []string, values, smoothed []float64, anomalies []bool) {
	heading(w, strings.ToUpper(metric)+" SERIES")
	for i, l := range labels {
		flag := ""
		if i < len(anomalies) && anomalies[i] {
			flag = warn("  <- anomaly")
		}
		line(w, "%s %12s %12s%s", l, number(values[i]), number(smoothed[i]), flag)
	}
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// SeriesInsights prints the time-series insight figures and narrative.
func SeriesInsights(w io.Writer, s insights.SeriesInsights) {
	heading(w, "TIME SERIES INSIGHTS")
	line(w, "Avg Daily Orders: %.1f", s.AvgDailyOrders)
	line(w, "%d-Day Trend: %+.1f%%", insights.TrendWindow, s.Trend)
	line(w, "Daily Volatility: %.1f", s.Volatility)
	if s.PeakDay != "" {
		line(w, "Peak Day: %s", s.PeakDay)
	}
	if s.WeeklyGrowth != nil {
		line(w, "Avg Weekly Growth: %+.1f%%", *s.WeeklyGrowth)
	}
	line(w, "Anomaly Days: %d", s.AnomalyDays)
	for _, n := range s.Narrative {
		line(w, "* %s", n)
	}
}
