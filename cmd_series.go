package main

import (
	"github.com/spf13/cobra"

	"ticket-analytics/pkg/dashboard"
	"ticket-analytics/pkg/report"
)

func (a *app) seriesCmd() *cobra.Command {
	var q dashboard.SeriesQuery
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Daily or weekly metric series with smoothing and anomaly flags",
		Example: `  ticket-analytics series --metric Revenue --method savgol --window 7
  ticket-analytics series --granularity weekly --day Friday --method exponential --alpha 0.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if !f.Changed("method") {
				q.Smoothing.Method = a.cfg.Smoothing.Method
			}
			if !f.Changed("window") {
				q.Smoothing.Window = a.cfg.Smoothing.Window
			}
			if !f.Changed("alpha") {
				q.Smoothing.Alpha = a.cfg.Smoothing.Alpha
			}
			if !f.Changed("threshold") {
				q.Anomalies = a.cfg.AnomalyThreshold
			}

			st, err := a.state(cmd.Context())
			if err != nil {
				return err
			}
			s, err := st.Series(q)
			if err != nil {
				return err
			}
			report.Series(a.out, s.Metric, s.Labels, s.Values, s.Smoothed, s.Anomalies)
			report.SeriesInsights(a.out, st.Insights(q.Day, a.cfg.AnomalyThreshold))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Metric, "metric", dashboard.MetricOrders, "Orders, Revenue, Tickets or Unique_Customers")
	f.StringVar(&q.Granularity, "granularity", dashboard.Daily, "daily or weekly")
	f.StringVar(&q.Smoothing.Method, "method", "", "rolling, exponential, savgol or none")
	f.IntVar(&q.Smoothing.Window, "window", 0, "rolling / savgol window")
	f.Float64Var(&q.Smoothing.Alpha, "alpha", 0, "exponential smoothing factor in (0, 1]")
	f.Float64Var(&q.Anomalies, "threshold", 0, "anomaly z-score threshold; 0 disables")
	f.StringVar(&q.Day, "day", "", "only orders of this weekday tag")
	return cmd
}

func (a *app) weeklyCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Week-over-week changes per weekday and the weekly heatmap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.state(cmd.Context())
			if err != nil {
				return err
			}
			if day != "" {
				wow, err := st.WeekOverWeek(day)
				if err != nil {
					return err
				}
				report.WeekOverWeek(a.out, wow)
			} else {
				for _, d := range st.Days() {
					if wow, err := st.WeekOverWeek(d); err == nil {
						report.WeekOverWeek(a.out, wow)
					}
				}
			}
			report.Heatmap(a.out, st.Heatmap())
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "only this weekday tag")
	return cmd
}
