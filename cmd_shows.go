package main

import (
	"github.com/spf13/cobra"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/dashboard"
	"ticket-analytics/pkg/insights"
	"ticket-analytics/pkg/report"
)

func (a *app) showsCmd() *cobra.Command {
	var (
		day       string
		minOrders int
		top       int
	)
	cmd := &cobra.Command{
		Use:   "shows",
		Short: "Rank individual shows and compare weekdays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.state(cmd.Context())
			if err != nil {
				return err
			}
			if top <= 0 {
				top = a.cfg.TopN
			}
			ranked := st.Shows(dashboard.ShowFilter{Day: day, MinOrders: minOrders})
			txs := st.Filter(day)
			report.Shows(a.out, ranked, aggregate.DayPerformances(txs), aggregate.BookingWindows(txs), top)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "only shows of this weekday tag")
	cmd.Flags().IntVar(&minOrders, "min-orders", 0, "hide shows with fewer orders")
	cmd.Flags().IntVar(&top, "top", 0, "shows listed at each end (default from config)")
	return cmd
}

func (a *app) customersCmd() *cobra.Command {
	var (
		kind string
		top  int
		day  string
	)
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Repeat customer case studies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.state(cmd.Context())
			if err != nil {
				return err
			}
			if top <= 0 {
				top = a.cfg.TopN
			}
			customers := st.Analysis.Customers
			if day != "" {
				customers = aggregate.Customers(st.Filter(day))
			}
			if kind == "" {
				report.CaseStudies(a.out, insights.CaseStudies(customers, top))
				return nil
			}
			ranked, err := insights.CaseStudy(customers, kind, top)
			if err != nil {
				return err
			}
			report.CaseStudy(a.out, insights.KindTitles[kind], ranked)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "spend, frequency, variety, lifetime or aov (default: all)")
	cmd.Flags().IntVar(&top, "top", 0, "customers per list (default from config)")
	cmd.Flags().StringVar(&day, "day", "", "only orders of this weekday tag")
	return cmd
}
