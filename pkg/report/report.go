// Package report renders analysis results as console text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"ticket-analytics/pkg/models"
)

var (
	banner  = color.New(color.FgHiWhite, color.Bold).SprintFunc()
	section = color.New(color.FgCyan, color.Bold).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

func count(n int) string { return humanize.Comma(int64(n)) }

func money(v float64) string { return "$" + humanize.FormatFloat("#,###.##", v) }

func pct(share float64) string { return fmt.Sprintf("%.1f%%", share*100) }

func title(w io.Writer, s string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, banner(s), rule)
}

func heading(w io.Writer, s string) {
	fmt.Fprintf(w, "\n%s\n", section(s+":"))
}

func line(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "   "+format+"\n", args...)
}

// Basic prints the batch report. Sections always come in the same order:
// overview, purchase timing, customer insights, orders by day, top states,
// top cities, payment methods, ticket quantities.
func Basic(w io.Writer, s *models.Snapshot) {
	h := s.Headline
	title(w, "COMEDY TICKET SALES ANALYSIS RESULTS")

	heading(w, "OVERVIEW")
	line(w, "Total Orders: %s", count(h.TotalOrders))
	line(w, "Total Tickets Sold: %s", count(h.TotalTickets))
	line(w, "Total Revenue: %s", money(h.TotalRevenue))
	line(w, "Unique Customers: %s", count(h.UniqueCustomers))
	line(w, "Average Order Value: %s", money(h.AvgOrderValue))

	heading(w, "PURCHASE TIMING")
	line(w, "Average Days Before Event: %.1f", h.AvgDaysBeforeEvent)
	line(w, "Same Day Purchases: %s (%s)", count(h.SameDayPurchases), pct(share(h.SameDayPurchases, h.TotalOrders)))
	line(w, "Last Minute (<=1 day): %s", count(h.LastMinutePurchases))
	line(w, "Advance (>=7 days): %s", count(h.AdvancePurchases))
	if h.PeakHour != nil {
		line(w, "Peak Purchase Hour: %d:00", *h.PeakHour)
	}

	heading(w, "CUSTOMER INSIGHTS")
	line(w, "Returning Customer Rate: %s", pct(h.ReturningRate))
	line(w, "Repeat Customers (3+ orders): %s (%s)", count(h.RepeatCustomers), pct(h.RepeatRate))
	line(w, "Average Orders per Customer: %.1f", h.AvgOrdersPerCustomer)

	heading(w, "ORDERS BY DAY")
	for _, r := range s.OrdersByDay {
		line(w, "%s: %s orders", r.Key, count(r.Count))
	}

	heading(w, "TOP STATES")
	for _, r := range head(s.TopStates, 5) {
		line(w, "%s: %s orders", r.Key, count(r.Count))
	}

	heading(w, "TOP CITIES")
	for _, r := range head(s.TopCities, 5) {
		line(w, "%s: %s orders", r.Key, count(r.Count))
	}

	heading(w, "PAYMENT METHODS")
	for _, p := range s.Payments {
		line(w, "%s: %s orders (%s)", p.PaymentType, count(p.Orders), pct(p.Share))
	}

	heading(w, "TICKET QUANTITIES")
	qty := make([]int, 0, len(s.Quantities))
	for q := range s.Quantities {
		qty = append(qty, q)
	}
	sort.Ints(qty)
	for _, q := range qty {
		line(w, "%d ticket(s): %s orders", q, count(s.Quantities[q]))
	}
}

// Load prints what was read from the source.
func Load(w io.Writer, stats models.LoadStats, prep models.PrepareStats) {
	for _, f := range stats.Files {
		fmt.Fprintf(w, "Loaded %s records from %s\n", count(f.Rows), f.Tag)
	}
	for _, name := range stats.Skipped {
		fmt.Fprintf(w, "%s %s\n", warn("Skipped (missing columns):"), name)
	}
	fmt.Fprintf(w, "Total records loaded: %s\n", count(stats.Total))
	if prep.OrderDateParsed < prep.Total {
		fmt.Fprintf(w, "%s %s of %s rows have a usable order date\n",
			warn("Note:"), count(prep.OrderDateParsed), count(prep.Total))
	}
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
