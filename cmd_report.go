package main

import (
	"github.com/spf13/cobra"

	"ticket-analytics/pkg/report"
)

func (a *app) reportCmd() *cobra.Command {
	var jsonPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the sales report and write the JSON snapshot",
		Example: `  ticket-analytics report --data-dir src/data
  ticket-analytics report --dsn sqlite://orders.db --json out/analysis_results.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonPath != "" {
				a.cfg.Snapshot = jsonPath
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			st, snap, err := svc.Publish(cmd.Context())
			if err != nil {
				return err
			}
			report.Load(a.out, st.Load, st.Prepare)
			report.Basic(a.out, snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "snapshot output path (default from --snapshot)")
	return cmd
}

func (a *app) recommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print the actionable recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			snap, _, err := svc.Basic(cmd.Context())
			if err != nil {
				return err
			}
			report.Recommendations(a.out, snap.Recommendations)
			return nil
		},
	}
}
