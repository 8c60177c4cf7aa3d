package dashboard

import (
	"sort"

	"github.com/pkg/errors"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/insights"
	"ticket-analytics/pkg/models"
	"ticket-analytics/pkg/timeseries"
)

// Series metrics.
const (
	MetricOrders          = "Orders"
	MetricRevenue         = "Revenue"
	MetricTickets         = "Tickets"
	MetricUniqueCustomers = "Unique_Customers"
)

// Series granularities.
const (
	Daily  = "daily"
	Weekly = "weekly"
)

// ShowFilter narrows the show table.
type ShowFilter struct {
	Day       string // weekday tag; "" keeps every day
	MinOrders int
}

// SeriesQuery selects one metric series and how to present it.
type SeriesQuery struct {
	Day         string
	Metric      string
	Granularity string
	Smoothing   timeseries.Params
	Anomalies   float64 // z-score threshold; 0 disables flagging
}

// Series is a metric series with its smoothed values and anomaly flags,
// all aligned by index.
type Series struct {
	Metric    string    `json:"metric"`
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	Smoothed  []float64 `json:"smoothed"`
	Anomalies []bool    `json:"anomalies,omitempty"`
}

// Filter returns the transactions of one weekday tag; "" returns all of them.
func (st *State) Filter(day string) []models.Transaction {
	if day == "" {
		return st.Transactions
	}
	var out []models.Transaction
	for i := range st.Transactions {
		if st.Transactions[i].DayOfWeek == day {
			out = append(out, st.Transactions[i])
		}
	}
	return out
}

// Days lists the weekday tags present in the input, Monday first.
func (st *State) Days() []string {
	var days []string
	for _, row := range st.Analysis.OrdersByDay {
		days = append(days, row.Key)
	}
	sortDays(days)
	return days
}

// Shows returns the show table ranked by orders.
func (st *State) Shows(f ShowFilter) []models.ShowSummary {
	shows := st.Analysis.Shows
	if f.Day != "" {
		shows = aggregate.Shows(st.Filter(f.Day))
	}
	var out []models.ShowSummary
	for _, s := range aggregate.RankShows(shows) {
		if s.Orders >= f.MinOrders {
			out = append(out, s)
		}
	}
	return out
}

// Series builds the requested metric series.
func (st *State) Series(q SeriesQuery) (*Series, error) {
	txs := st.Filter(q.Day)
	out := &Series{Metric: q.Metric}
	switch q.Granularity {
	case Daily, "":
		rows := st.Analysis.Daily
		if q.Day != "" {
			rows = aggregate.Daily(txs)
		}
		for _, d := range rows {
			v, err := metric(q.Metric, d.Orders, d.Revenue, d.Tickets, d.UniqueCustomers)
			if err != nil {
				return nil, err
			}
			out.Labels = append(out.Labels, d.Date)
			out.Values = append(out.Values, v)
		}
	case Weekly:
		rows := st.Analysis.Weekly
		if q.Day != "" {
			rows = aggregate.Weekly(txs)
		}
		for _, w := range rows {
			v, err := metric(q.Metric, w.Orders, w.Revenue, w.Tickets, w.UniqueCustomers)
			if err != nil {
				return nil, err
			}
			out.Labels = append(out.Labels, w.WeekStart)
			out.Values = append(out.Values, v)
		}
	default:
		return nil, errors.Errorf("unknown granularity %q", q.Granularity)
	}
	if len(out.Values) == 0 {
		if _, err := metric(q.Metric, 0, 0, 0, 0); err != nil {
			return nil, err
		}
	}

	smoothing := q.Smoothing
	if smoothing.Method == "" {
		smoothing.Method = timeseries.MethodNone
	}
	smoothed, err := timeseries.Smooth(out.Values, smoothing)
	if err != nil {
		return nil, err
	}
	out.Smoothed = smoothed
	if q.Anomalies > 0 {
		out.Anomalies = timeseries.Anomalies(out.Values, q.Anomalies)
	}
	return out, nil
}

func metric(name string, orders int, revenue float64, tickets, customers int) (float64, error) {
	switch name {
	case MetricOrders, "":
		return float64(orders), nil
	case MetricRevenue:
		return revenue, nil
	case MetricTickets:
		return float64(tickets), nil
	case MetricUniqueCustomers:
		return float64(customers), nil
	}
	return 0, errors.Errorf("unknown metric %q", name)
}

// CaseStudy ranks repeat customers by kind.
func (st *State) CaseStudy(kind string, n int) ([]models.CustomerSummary, error) {
	return insights.CaseStudy(st.Analysis.Customers, kind, n)
}

// Lifecycles ranks repeat customers by relationship length.
func (st *State) Lifecycles(n int, ascending bool) []models.CustomerSummary {
	return insights.Lifecycles(st.Analysis.Customers, n, ascending)
}

// WeekOverWeek compares consecutive shows of one weekday tag.
func (st *State) WeekOverWeek(day string) (*models.WeekOverWeek, error) {
	wow := aggregate.WeekOverWeek(st.Transactions, day)
	if wow == nil {
		return nil, errors.Errorf("no shows on %q", day)
	}
	return wow, nil
}

// Heatmap returns orders per purchase week and weekday tag.
func (st *State) Heatmap() []models.HeatmapCell {
	return aggregate.Heatmap(st.Transactions)
}

// Insights derives the time-series insights, optionally for one weekday tag.
func (st *State) Insights(day string, threshold float64) insights.SeriesInsights {
	if day == "" {
		return insights.Series(st.Analysis.Daily, st.Analysis.Weekly, threshold)
	}
	txs := st.Filter(day)
	return insights.Series(aggregate.Daily(txs), aggregate.Weekly(txs), threshold)
}

func sortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool { return aggregate.DayRank(days[i], days[j]) })
}
