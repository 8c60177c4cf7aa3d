package insights

import (
	"fmt"
	"math"

	"ticket-analytics/pkg/models"
	"ticket-analytics/pkg/timeseries"
)

// TrendWindow is the number of days compared at each end of the daily series.
const TrendWindow = 30

// SeriesInsights summarises the daily order series.
type SeriesInsights struct {
	AvgDailyOrders float64  `json:"avg_daily_orders"`
	Trend          float64  `json:"trend_pct"`
	Volatility     float64  `json:"volatility"`
	PeakDay        string   `json:"peak_day"`
	WeeklyGrowth   *float64 `json:"avg_weekly_growth"`
	AnomalyDays    int      `json:"anomaly_days"`
	Narrative      []string `json:"narrative"`
}

// Series derives the time-series insight figures from the daily and weekly summaries.
func Series(daily []models.DailySummary, weekly []models.WeeklySummary, threshold float64) SeriesInsights {
	var out SeriesInsights
	if len(daily) == 0 {
		return out
	}
	orders := make([]float64, len(daily))
	for i, d := range daily {
		orders[i] = float64(d.Orders)
	}

	out.AvgDailyOrders = timeseries.Mean(orders)
	out.Trend = timeseries.Trend(orders, TrendWindow)
	out.Volatility = zeroNaN(timeseries.StdDev(orders))
	if i := timeseries.ArgMax(orders); i >= 0 {
		out.PeakDay = daily[i].Date
	}
	if len(weekly) > 1 {
		w := make([]float64, len(weekly))
		for i, s := range weekly {
			w[i] = float64(s.Orders)
		}
		if g := timeseries.Mean(timeseries.PctChange(w)); !math.IsNaN(g) {
			g *= 100
			out.WeeklyGrowth = &g
		}
	}
	out.AnomalyDays = timeseries.CountTrue(timeseries.Anomalies(orders, threshold))

	level := "moderate"
	if out.Volatility > out.AvgDailyOrders*0.5 {
		level = "high"
	}
	direction := "decline"
	if out.Trend > 0 {
		direction = "growth"
	}
	out.Narrative = []string{
		fmt.Sprintf("The time series shows %s volatility with %d anomalous days detected", level, out.AnomalyDays),
		fmt.Sprintf("Recent %d-day trend shows %s of %.1f%% compared to early period", TrendWindow, direction, math.Abs(out.Trend)),
	}
	return out
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
