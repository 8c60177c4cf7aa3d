package calculator

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"ticket-analytics/pkg/aggregate"
	"ticket-analytics/pkg/models"
)

type stage struct {
	name string
	run  func(txs []models.Transaction, a *models.Analysis)
}

var stages = []stage{
	{"headline", func(txs []models.Transaction, a *models.Analysis) {
		a.Headline = aggregate.HeadlineMetrics(txs)
		a.Hourly = aggregate.Hourly(txs)
		a.Quantities = aggregate.Quantities(txs)
		a.OrdersByDay = aggregate.OrdersByDay(txs)
	}},
	{"series", func(txs []models.Transaction, a *models.Analysis) {
		a.Daily = aggregate.Daily(txs)
		a.Weekly = aggregate.Weekly(txs)
	}},
	{"shows", func(txs []models.Transaction, a *models.Analysis) {
		a.Shows = aggregate.Shows(txs)
		a.DayPerformance = aggregate.DayPerformances(txs)
		a.BookingWindows = aggregate.BookingWindows(txs)
	}},
	{"customers", func(txs []models.Transaction, a *models.Analysis) {
		a.Customers = aggregate.Customers(txs)
		a.Acquisition = aggregate.Acquisition(txs)
	}},
	{"segments", func(txs []models.Transaction, a *models.Analysis) {
		a.Payments = aggregate.Payments(txs)
		a.TopStates = aggregate.TopStates(txs)
		a.TopCities = aggregate.TopCities(txs)
		a.Seasonal = aggregate.Seasonal(txs)
	}},
}

// Run filters txs to the configured event-month window and computes every
// aggregate of one analysis. txs is not modified.
func Run(ctx context.Context, txs []models.Transaction, cfg models.Config) (*models.Analysis, error) {
	txs, err := Window(txs, cfg.StartMonth, cfg.EndMonth)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, txs, cfg.Verbose)
}

// Analyze computes every aggregate over txs as given, with no window applied.
func Analyze(ctx context.Context, txs []models.Transaction, verbose bool) (*models.Analysis, error) {
	if len(txs) == 0 {
		return nil, errors.Wrap(models.ErrDataUnavailable, "no transactions in window")
	}

	var bar *progressbar.ProgressBar
	if verbose {
		bar = progressbar.Default(int64(len(stages)), "analysis")
	} else {
		bar = progressbar.DefaultSilent(int64(len(stages)), "analysis")
	}

	a := &models.Analysis{}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "before %s", s.name)
		}
		started := time.Now()
		s.run(txs, a)
		_ = bar.Add(1)
		log.Debug().Str("stage", s.name).Dur("took", time.Since(started)).Msg("stage done")
	}
	_ = bar.Finish()

	log.Info().
		Int("orders", a.Headline.TotalOrders).
		Int("shows", len(a.Shows)).
		Int("customers", len(a.Customers)).
		Msg("Analysis complete")
	return a, nil
}

// Window keeps the transactions whose event falls in [start, end], both
// "MMYYYY". With both bounds empty txs is returned as is; otherwise rows
// without an event date are left out.
func Window(txs []models.Transaction, start, end string) ([]models.Transaction, error) {
	if start == "" && end == "" {
		return txs, nil
	}
	from, err := parseMonth(start)
	if err != nil {
		return nil, errors.Wrap(err, "start_month")
	}
	to, err := parseMonth(end)
	if err != nil {
		return nil, errors.Wrap(err, "end_month")
	}
	if to.Before(from) {
		return nil, errors.New("end_month < start_month")
	}

	months := make(map[string]bool)
	for _, m := range monthsBetweenInclusive(from, to) {
		months[formatMonth(m)] = true
	}
	out := make([]models.Transaction, 0, len(txs))
	for i := range txs {
		if txs[i].EventDate.Valid && months[formatMonth(txs[i].EventDate.Time)] {
			out = append(out, txs[i])
		}
	}
	log.Debug().
		Str("from", formatMonth(from)).
		Str("to", formatMonth(to)).
		Int("kept", len(out)).
		Int("total", len(txs)).
		Msg("event month window")
	return out, nil
}

// parseMonth("MMYYYY") -> first day of the month, UTC
func parseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, fmt.Errorf("expected MMYYYY (e.g. 012025), got %q", mmyyyy)
	}
	for _, c := range mmyyyy {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("expected MMYYYY (e.g. 012025), got %q", mmyyyy)
		}
	}
	month := int(mmyyyy[0]-'0')*10 + int(mmyyyy[1]-'0')
	year := int(mmyyyy[2]-'0')*1000 + int(mmyyyy[3]-'0')*100 + int(mmyyyy[4]-'0')*10 + int(mmyyyy[5]-'0')
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseMonth validates an "MMYYYY" bound.
func ParseMonth(mmyyyy string) error {
	_, err := parseMonth(mmyyyy)
	return err
}

func monthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

func formatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}
