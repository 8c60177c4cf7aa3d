package aggregate

import (
	"sort"
	"time"

	"github.com/jinzhu/now"

	"ticket-analytics/pkg/models"
)

var mondayWeeks = &now.Config{WeekStartDay: time.Monday}

// Daily groups by calendar day of the order, ascending.
func Daily(txs []models.Transaction) []models.DailySummary {
	g := GroupBy(txs, func(tx *models.Transaction) (string, bool) {
		if !tx.OrderDate.Valid {
			return "", false
		}
		return now.New(tx.OrderDate.Time).BeginningOfDay().Format(dateLayout), true
	})
	out := make([]models.DailySummary, 0, g.Len())
	for _, k := range g.Keys() {
		out = append(out, models.DailySummary{
			Date:            k,
			Orders:          g.Count(k),
			Revenue:         money(g.SumDecimal(k, GrossSales)),
			Tickets:         int(g.Sum(k, TicketQuantity)),
			UniqueCustomers: g.NUnique(k, CustomerID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type isoWeek struct{ Year, Week int }

// Weekly groups by ISO week of the order, ascending.
func Weekly(txs []models.Transaction) []models.WeeklySummary {
	g := GroupBy(txs, func(tx *models.Transaction) (isoWeek, bool) {
		return isoWeek{tx.Order.ISOYear, tx.Order.ISOWeek}, tx.Order.Valid
	})
	out := make([]models.WeeklySummary, 0, g.Len())
	for _, k := range g.Keys() {
		start := mondayWeeks.With(g.Rows(k)[0].OrderDate.Time).BeginningOfWeek()
		out = append(out, models.WeeklySummary{
			Year:            k.Year,
			Week:            k.Week,
			WeekStart:       start.Format(dateLayout),
			Orders:          g.Count(k),
			Revenue:         money(g.SumDecimal(k, GrossSales)),
			Tickets:         int(g.Sum(k, TicketQuantity)),
			UniqueCustomers: g.NUnique(k, CustomerID),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

type showKey struct{ Date, Day string }

// Shows summarises each performance in first-appearance order.
func Shows(txs []models.Transaction) []models.ShowSummary {
	g := GroupBy(txs, func(tx *models.Transaction) (showKey, bool) {
		return showKey{EventDate(tx), tx.DayOfWeek}, tx.EventDate.Valid
	})
	out := make([]models.ShowSummary, 0, g.Len())
	for _, k := range g.Keys() {
		rows := g.Rows(k)
		orders := len(rows)
		revenue := money(g.SumDecimal(k, GrossSales))
		tickets := int(g.Sum(k, TicketQuantity))
		customers := g.NUnique(k, CustomerID)

		sameDay, advance, free := 0, 0, 0
		for _, tx := range rows {
			if tx.DaysBeforeEvent.Valid && tx.DaysBeforeEvent.Int64 == 0 {
				sameDay++
			}
			if tx.DaysBeforeEvent.Valid && tx.DaysBeforeEvent.Int64 >= 7 {
				advance++
			}
			if tx.PaymentType == models.PaymentFree {
				free++
			}
		}
		repeat := 0
		for _, n := range countBy(rows, CustomerID) {
			if n > 1 {
				repeat++
			}
		}
		topState, topCount := mode(rows, State)
		if topState == "" {
			topState = "Unknown"
		}

		out = append(out, models.ShowSummary{
			ShowID:             rows[0].ShowID,
			EventDate:          k.Date,
			DayOfWeek:          k.Day,
			EventName:          g.First(k, EventName),
			Orders:             orders,
			Tickets:            tickets,
			Revenue:            revenue,
			UniqueCustomers:    customers,
			AvgOrderValue:      ratio(revenue, float64(orders)),
			TicketsPerOrder:    ratio(float64(tickets), float64(orders)),
			AvgDaysBefore:      g.Mean(k, DaysBeforeEvent),
			SameDayPurchases:   sameDay,
			SameDayRate:        ratio(float64(sameDay), float64(orders)),
			AdvancePurchases:   advance,
			AdvanceRate:        ratio(float64(advance), float64(orders)),
			RepeatCustomers:    repeat,
			RepeatRate:         ratio(float64(repeat), float64(customers)),
			FreeTickets:        free,
			FreeRate:           ratio(float64(free), float64(orders)),
			PaidTickets:        orders - free,
			TopState:           topState,
			StateConcentration: ratio(float64(topCount), float64(orders)),
		})
	}
	return out
}

// RankShows orders shows by order count, highest first. Ties keep their input order.
func RankShows(shows []models.ShowSummary) []models.ShowSummary {
	out := append([]models.ShowSummary(nil), shows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Orders > out[j].Orders })
	return out
}

// Customers summarises every identified buyer in first-appearance order.
func Customers(txs []models.Transaction) []models.CustomerSummary {
	g := GroupBy(txs, By(CustomerID))
	out := make([]models.CustomerSummary, 0, g.Len())
	for _, k := range g.Keys() {
		var dates []time.Time
		for _, tx := range g.Rows(k) {
			if tx.OrderDate.Valid {
				dates = append(dates, tx.OrderDate.Time)
			}
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		c := models.CustomerSummary{
			CustomerID:   k,
			TotalOrders:  g.Count(k),
			TotalTickets: int(g.Sum(k, TicketQuantity)),
			TotalSpent:   money(g.SumDecimal(k, GrossSales)),
			DaysAttended: g.Distinct(k, DayOfWeek),
			UniqueEvents: g.NUnique(k, EventDate),
			State:        g.First(k, State),
			City:         g.First(k, City),
			OrderDates:   dates,
		}
		if len(dates) > 0 {
			c.FirstOrder = dates[0]
			c.LastOrder = dates[len(dates)-1]
			c.LifetimeDays = int(c.LastOrder.Sub(c.FirstOrder).Hours() / 24)
		}
		c.AvgOrderValue = ratio(c.TotalSpent, float64(c.TotalOrders))
		c.DaysVariety = len(c.DaysAttended)
		out = append(out, c)
	}
	return out
}

// RepeatCustomers keeps customers with at least the repeat-order threshold.
func RepeatCustomers(customers []models.CustomerSummary) []models.CustomerSummary {
	var out []models.CustomerSummary
	for _, c := range customers {
		if c.TotalOrders >= models.Heuristics.RepeatOrderThreshold {
			out = append(out, c)
		}
	}
	return out
}

// Booking window labels, in bucket order.
var BookingWindowLabels = []string{
	"Same Day", "1 Day", "2-3 Days", "4-7 Days", "1-2 Weeks", "2-4 Weeks", "1+ Month",
}

// BookingWindow maps days-before-event onto its bucket index.
func BookingWindow(days int64) int {
	switch {
	case days <= 0:
		return 0
	case days == 1:
		return 1
	case days <= 3:
		return 2
	case days <= 7:
		return 3
	case days <= 14:
		return 4
	case days <= 30:
		return 5
	default:
		return 6
	}
}

// BookingWindows groups orders by booking window, in bucket order. Empty buckets are omitted.
func BookingWindows(txs []models.Transaction) []models.BookingWindowSummary {
	g := GroupBy(txs, func(tx *models.Transaction) (int, bool) {
		return BookingWindow(tx.DaysBeforeEvent.Int64), tx.DaysBeforeEvent.Valid
	})
	keys := append([]int(nil), g.Keys()...)
	sort.Ints(keys)
	out := make([]models.BookingWindowSummary, 0, len(keys))
	for _, k := range keys {
		revenue := money(g.SumDecimal(k, GrossSales))
		out = append(out, models.BookingWindowSummary{
			Window:        BookingWindowLabels[k],
			Orders:        g.Count(k),
			Tickets:       int(g.Sum(k, TicketQuantity)),
			Revenue:       revenue,
			AvgOrderValue: ratio(revenue, float64(g.Count(k))),
		})
	}
	return out
}

// Payments groups by payment type, most orders first.
func Payments(txs []models.Transaction) []models.PaymentSummary {
	g := GroupBy(txs, ByOrUnknown(PaymentType))
	out := make([]models.PaymentSummary, 0, g.Len())
	for _, k := range g.Keys() {
		revenue := money(g.SumDecimal(k, GrossSales))
		out = append(out, models.PaymentSummary{
			PaymentType:     k,
			Orders:          g.Count(k),
			Tickets:         int(g.Sum(k, TicketQuantity)),
			Revenue:         revenue,
			UniqueCustomers: g.NUnique(k, CustomerID),
			Share:           ratio(float64(g.Count(k)), float64(len(txs))),
			AvgOrderValue:   ratio(revenue, float64(g.Count(k))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].PaymentType < out[j].PaymentType
	})
	return out
}

// Frequency counts rows per value of col, most frequent first, ties by key.
// n <= 0 keeps every row.
func Frequency(txs []models.Transaction, key KeyFunc[string], n int) []models.CountRow {
	g := GroupBy(txs, key)
	out := make([]models.CountRow, 0, g.Len())
	for _, k := range g.Keys() {
		out = append(out, models.CountRow{Key: k, Count: g.Count(k)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopStates is the ten most frequent purchaser states.
func TopStates(txs []models.Transaction) []models.CountRow {
	return Frequency(txs, ByOrUnknown(State), 10)
}

// TopCities is the ten most frequent purchaser cities.
func TopCities(txs []models.Transaction) []models.CountRow {
	return Frequency(txs, ByOrUnknown(City), 10)
}

// OrdersByDay counts orders per weekday tag.
func OrdersByDay(txs []models.Transaction) []models.CountRow {
	return Frequency(txs, By(DayOfWeek), 0)
}

// Hourly counts orders per hour of purchase.
func Hourly(txs []models.Transaction) map[int]int {
	out := map[int]int{}
	for i := range txs {
		if txs[i].Order.Valid {
			out[txs[i].Order.Hour]++
		}
	}
	return out
}

// PeakHour is the busiest purchase hour; the earliest wins a tie.
func PeakHour(hourly map[int]int) (int, bool) {
	best, bestN, found := 0, -1, false
	for h, n := range hourly {
		if n > bestN || (n == bestN && h < best) {
			best, bestN, found = h, n, true
		}
	}
	return best, found
}

// Quantities counts orders per ticket quantity.
func Quantities(txs []models.Transaction) map[int]int {
	out := map[int]int{}
	for i := range txs {
		if txs[i].TicketQty.Valid {
			out[int(txs[i].TicketQty.Int64)]++
		}
	}
	return out
}

// DayPerformances compares weekday tags by average orders per show.
func DayPerformances(txs []models.Transaction) []models.DayPerformance {
	g := GroupBy(txs, By(DayOfWeek))
	out := make([]models.DayPerformance, 0, g.Len())
	for _, k := range g.Keys() {
		shows := g.NUnique(k, EventDate)
		revenue := money(g.SumDecimal(k, GrossSales))
		out = append(out, models.DayPerformance{
			DayOfWeek:         k,
			Orders:            g.Count(k),
			Tickets:           int(g.Sum(k, TicketQuantity)),
			Revenue:           revenue,
			Shows:             shows,
			AvgOrdersPerShow:  ratio(float64(g.Count(k)), float64(shows)),
			AvgRevenuePerShow: ratio(revenue, float64(shows)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgOrdersPerShow != out[j].AvgOrdersPerShow {
			return out[i].AvgOrdersPerShow > out[j].AvgOrdersPerShow
		}
		return out[i].DayOfWeek < out[j].DayOfWeek
	})
	return out
}

// Seasonal groups by event month, January first.
func Seasonal(txs []models.Transaction) []models.MonthSummary {
	g := GroupBy(txs, func(tx *models.Transaction) (int, bool) {
		return tx.Event.Month, tx.Event.Valid
	})
	keys := append([]int(nil), g.Keys()...)
	sort.Ints(keys)
	out := make([]models.MonthSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthSummary{
			Month:   k,
			Orders:  g.Count(k),
			Tickets: int(g.Sum(k, TicketQuantity)),
			Revenue: money(g.SumDecimal(k, GrossSales)),
		})
	}
	return out
}

// Customer types of the acquisition split.
const (
	CustomerNew       = "New"
	CustomerReturning = "Returning"
)

// CustomerOrderCounts is the single pre-pass behind every new/returning split.
func CustomerOrderCounts(txs []models.Transaction) map[string]int {
	counts := make(map[string]int)
	for i := range txs {
		if id := txs[i].CustomerID; id != "" {
			counts[id]++
		}
	}
	return counts
}

// Acquisition splits orders between one-time and returning customers.
func Acquisition(txs []models.Transaction) []models.AcquisitionSummary {
	counts := CustomerOrderCounts(txs)
	g := GroupBy(txs, func(tx *models.Transaction) (string, bool) {
		n, ok := counts[tx.CustomerID]
		if !ok {
			return "", false
		}
		if n == 1 {
			return CustomerNew, true
		}
		return CustomerReturning, true
	})
	var out []models.AcquisitionSummary
	for _, k := range []string{CustomerNew, CustomerReturning} {
		if g.Count(k) == 0 {
			continue
		}
		out = append(out, models.AcquisitionSummary{
			CustomerType: k,
			Customers:    g.NUnique(k, CustomerID),
			Orders:       g.Count(k),
			Revenue:      money(g.SumDecimal(k, GrossSales)),
		})
	}
	return out
}

// WeekOverWeek follows the shows of one weekday tag in event order. It returns
// nil when the weekday has no dated orders.
func WeekOverWeek(txs []models.Transaction, day string) *models.WeekOverWeek {
	g := GroupBy(txs, func(tx *models.Transaction) (string, bool) {
		return EventDate(tx), tx.DayOfWeek == day && tx.EventDate.Valid
	})
	if g.Len() == 0 {
		return nil
	}
	keys := append([]string(nil), g.Keys()...)
	sort.Strings(keys)

	wow := &models.WeekOverWeek{DayOfWeek: day}
	var orderGrowth, revenueGrowth []float64
	for i, k := range keys {
		first := g.Rows(k)[0]
		sc := models.ShowChange{
			EventDate:       k,
			Year:            first.Event.ISOYear,
			Week:            first.Event.ISOWeek,
			Orders:          g.Count(k),
			Tickets:         int(g.Sum(k, TicketQuantity)),
			Revenue:         money(g.SumDecimal(k, GrossSales)),
			UniqueCustomers: g.NUnique(k, CustomerID),
			AvgDaysBefore:   g.Mean(k, DaysBeforeEvent),
		}
		if i > 0 {
			prev := wow.Shows[i-1]
			sc.OrdersChange = pctChange(float64(prev.Orders), float64(sc.Orders))
			sc.RevenueChange = pctChange(prev.Revenue, sc.Revenue)
			sc.TicketsChange = pctChange(float64(prev.Tickets), float64(sc.Tickets))
			if sc.OrdersChange != nil {
				orderGrowth = append(orderGrowth, *sc.OrdersChange)
			}
			if sc.RevenueChange != nil {
				revenueGrowth = append(revenueGrowth, *sc.RevenueChange)
			}
		}
		wow.Shows = append(wow.Shows, sc)
	}
	wow.AvgOrderGrowth = mean(orderGrowth)
	wow.AvgRevenueGrowth = mean(revenueGrowth)
	return wow
}

func pctChange(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (cur - prev) / prev * 100
	return &v
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return ratio(s, float64(len(xs)))
}

var weekdayOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3, "Friday": 4, "Saturday": 5, "Sunday": 6,
}

// DayRank orders weekday names Monday first; other tags sort after, by name.
func DayRank(a, b string) bool {
	ra, oka := weekdayOrder[a]
	rb, okb := weekdayOrder[b]
	switch {
	case oka && okb:
		return ra < rb
	case oka != okb:
		return oka
	default:
		return a < b
	}
}

type heatKey struct {
	Week int
	Day  string
}

// Heatmap counts orders per ISO week of purchase and weekday tag.
func Heatmap(txs []models.Transaction) []models.HeatmapCell {
	g := GroupBy(txs, func(tx *models.Transaction) (heatKey, bool) {
		return heatKey{tx.Order.ISOWeek, tx.DayOfWeek}, tx.Order.Valid
	})
	out := make([]models.HeatmapCell, 0, g.Len())
	for _, k := range g.Keys() {
		out = append(out, models.HeatmapCell{Week: k.Week, DayOfWeek: k.Day, Orders: g.Count(k)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return DayRank(out[i].DayOfWeek, out[j].DayOfWeek)
	})
	return out
}

func countBy(rows []*models.Transaction, col Categorical) map[string]int {
	counts := make(map[string]int)
	for _, tx := range rows {
		if v := col(tx); v != "" {
			counts[v]++
		}
	}
	return counts
}

// mode returns the most frequent non-empty value; ties go to the smallest value.
func mode(rows []*models.Transaction, col Categorical) (string, int) {
	best, bestN := "", 0
	for v, n := range countBy(rows, col) {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN
}
