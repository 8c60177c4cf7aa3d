package aggregate

import "ticket-analytics/pkg/models"

// HeadlineMetrics computes the overview, purchase timing and customer figures.
// Total orders counts every row; every other figure only uses the rows whose
// field parsed.
func HeadlineMetrics(txs []models.Transaction) models.Headline {
	g := GroupBy(txs, All)
	k := struct{}{}

	h := models.Headline{
		TotalOrders:        len(txs),
		TotalTickets:       int(g.Sum(k, TicketQuantity)),
		TotalRevenue:       money(g.SumDecimal(k, GrossSales)),
		UniqueCustomers:    g.NUnique(k, CustomerID),
		AvgDaysBeforeEvent: g.Mean(k, DaysBeforeEvent),
	}
	h.AvgOrderValue = ratio(h.TotalRevenue, float64(h.TotalOrders))

	for i := range txs {
		d := txs[i].DaysBeforeEvent
		if !d.Valid {
			continue
		}
		if d.Int64 == 0 {
			h.SameDayPurchases++
		}
		if d.Int64 <= 1 {
			h.LastMinutePurchases++
		}
		if d.Int64 >= 7 {
			h.AdvancePurchases++
		}
	}

	if hour, ok := PeakHour(Hourly(txs)); ok {
		h.PeakHour = &hour
	}

	counts := CustomerOrderCounts(txs)
	returning, repeat, orders := 0, 0, 0
	for _, n := range counts {
		orders += n
		if n > 1 {
			returning++
		}
		if n >= models.Heuristics.RepeatOrderThreshold {
			repeat++
		}
	}
	h.ReturningRate = ratio(float64(returning), float64(len(counts)))
	h.RepeatCustomers = repeat
	h.RepeatRate = ratio(float64(repeat), float64(len(counts)))
	h.AvgOrdersPerCustomer = ratio(float64(orders), float64(len(counts)))
	return h
}
