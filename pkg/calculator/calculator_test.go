package calculator

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-analytics/pkg/features"
	"ticket-analytics/pkg/models"
)

func TestParseMonth_Valid(t *testing.T) {
	got, err := parseMonth("032025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseMonth_InvalidLength(t *testing.T) {
	_, err := parseMonth("32025") // 5 chars
	if err == nil {
		t.Fatal("expected error for invalid length, got nil")
	}
}

func TestParseMonth_InvalidMonth(t *testing.T) {
	_, err := parseMonth("132025") // 13th month
	if err == nil {
		t.Fatal("expected error for invalid month, got nil")
	}
	if err := ParseMonth("0a2025"); err == nil {
		t.Fatal("expected error for non-digit, got nil")
	}
}

func TestMonthsBetweenInclusive(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := monthsBetweenInclusive(start, end)
	if len(got) != 4 {
		t.Fatalf("got %d months, want 4", len(got))
	}
	// spot-check
	if got[0].Month() != time.March || got[3].Month() != time.June {
		t.Fatalf("unexpected months: %v", got)
	}
}

func TestFormatMonth(t *testing.T) {
	d := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	if fm := formatMonth(d); fm != "11/2025" {
		t.Fatalf("got %q, want %q", fm, "11/2025")
	}
}

func transactions() []models.Transaction {
	rec := func(day, ordered, event, email, gross string) models.RawRecord {
		return models.RawRecord{DayOfWeek: day, Fields: map[string]string{
			models.ColOrderDate:  ordered,
			models.ColEventDate:  event,
			models.ColBuyerEmail: email,
			models.ColGrossSales: gross,
			models.ColTicketQty:  "1",
		}}
	}
	txs, _ := features.Prepare([]models.RawRecord{
		rec("Friday", "2025-01-20 10:00:00", "2025-01-31", "a@x.com", "10"),
		rec("Friday", "2025-02-20 10:00:00", "2025-02-28", "a@x.com", "20"),
		rec("Friday", "2025-03-01 10:00:00", "2025-03-07", "b@x.com", "30"),
		rec("Monday", "2025-03-01 10:00:00", "", "c@x.com", "40"),
	})
	return txs
}

func TestWindow(t *testing.T) {
	txs := transactions()

	all, err := Window(txs, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	got, err := Window(txs, "022025", "032025")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-02-28_Friday", got[0].ShowID)

	_, err = Window(txs, "032025", "012025")
	assert.Error(t, err)
	_, err = Window(txs, "032025", "")
	assert.Error(t, err)
}

func TestRun_FillsEveryTable(t *testing.T) {
	a, err := Run(context.Background(), transactions(), models.Config{})
	require.NoError(t, err)

	assert.Equal(t, 4, a.Headline.TotalOrders)
	assert.Equal(t, 100.0, a.Headline.TotalRevenue)
	assert.Len(t, a.Shows, 3)
	assert.Len(t, a.Customers, 3)
	assert.NotEmpty(t, a.Daily)
	assert.NotEmpty(t, a.Weekly)
	assert.NotEmpty(t, a.BookingWindows)
	assert.NotEmpty(t, a.Payments)
	assert.NotEmpty(t, a.DayPerformance)
	assert.NotEmpty(t, a.Seasonal)
	assert.Len(t, a.Acquisition, 2)
	assert.Equal(t, map[int]int{1: 4}, a.Quantities)
}

func TestRun_WindowAndCancellation(t *testing.T) {
	a, err := Run(context.Background(), transactions(), models.Config{StartMonth: "012025", EndMonth: "012025"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Headline.TotalOrders)

	_, err = Run(context.Background(), transactions(), models.Config{StartMonth: "012024", EndMonth: "122024"})
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, transactions(), models.Config{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyze_IgnoresWindow(t *testing.T) {
	windowed, err := Window(transactions(), "012025", "012025")
	require.NoError(t, err)
	a, err := Analyze(context.Background(), windowed, false)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Headline.TotalOrders)

	all, err := Analyze(context.Background(), transactions(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Headline.TotalOrders)

	_, err = Analyze(context.Background(), nil, false)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}
