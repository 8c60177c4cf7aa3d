package main

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ticket-analytics/pkg/config"
	"ticket-analytics/pkg/dashboard"
	"ticket-analytics/pkg/database"
	"ticket-analytics/pkg/loader"
)

// app carries the resolved configuration and the open resources of one invocation.
type app struct {
	cfg        config.Config
	configPath string
	out        io.Writer

	db *sql.DB
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	a := &app{cfg: config.Default(), out: os.Stdout}
	root := a.rootCmd()
	root.AddCommand(
		a.reportCmd(),
		a.showsCmd(),
		a.customersCmd(),
		a.seriesCmd(),
		a.recommendCmd(),
		a.weeklyCmd(),
	)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ticket-analytics",
		Short:         "Ticket sales analytics for recurring live shows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.String("data-dir", "", "directory of per-weekday CSV exports")
	f.String("dsn", "", "read orders from a table instead (mariadb://, mysql:// or sqlite://)")
	f.String("table", "", "orders table name")
	f.String("snapshot", "", "JSON snapshot path")
	f.String("start-month", "", "first event month (MMYYYY)")
	f.String("end-month", "", "last event month (MMYYYY)")
	f.String("log-level", "", "debug, info, warn or error")
	f.BoolP("verbose", "v", false, "debug logging and progress bars")
	return root
}

// resolve layers defaults, file, environment and finally the flags the user set.
func (a *app) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	for name, dst := range map[string]*string{
		"data-dir":    &cfg.DataDir,
		"dsn":         &cfg.DSN,
		"table":       &cfg.Table,
		"snapshot":    &cfg.Snapshot,
		"start-month": &cfg.StartMonth,
		"end-month":   &cfg.EndMonth,
		"log-level":   &cfg.LogLevel,
	} {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}
	if cfg.Verbose && !f.Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	a.cfg = cfg
	return nil
}

func (a *app) source() (loader.Source, error) {
	if a.cfg.DSN == "" {
		log.Debug().Str("dir", a.cfg.DataDir).Msg("reading CSV exports")
		return loader.NewDirSource(a.cfg.DataDir, a.cfg.Verbose), nil
	}
	db, _, err := database.Open(a.cfg.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	log.Debug().Str("table", a.cfg.Table).Msg("reading orders table")
	return database.NewTableSource(db, a.cfg.Table)
}

func (a *app) service() (*dashboard.Service, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	return dashboard.New(src, a.cfg.Run(), a.cfg.Snapshot, a.cfg.CacheSize)
}

func (a *app) state(ctx context.Context) (*dashboard.State, error) {
	svc, err := a.service()
	if err != nil {
		return nil, err
	}
	return svc.State(ctx)
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
