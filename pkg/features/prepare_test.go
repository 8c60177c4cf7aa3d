package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-analytics/pkg/models"
)

func record(day string, kv ...string) models.RawRecord {
	fields := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return models.RawRecord{Fields: fields, DayOfWeek: day, Source: day + ".csv"}
}

func TestParse_DerivedFields(t *testing.T) {
	tx := Parse(record("Friday",
		models.ColOrderID, "42",
		models.ColOrderDate, "2024-03-01 21:15:00",
		models.ColEventDate, "2024-03-08",
		models.ColBuyerEmail, "  A@X.com ",
		models.ColTicketQty, "2",
		models.ColGrossSales, "$1,030.50",
	))

	assert.Equal(t, "a@x.com", tx.CustomerID)
	assert.Equal(t, "2024-03-08_Friday", tx.ShowID)
	require.True(t, tx.DaysBeforeEvent.Valid)
	assert.EqualValues(t, 7, tx.DaysBeforeEvent.Int64)
	assert.EqualValues(t, 2, tx.TicketQty.Int64)
	assert.Equal(t, "1030.5", tx.GrossSales.Decimal.String())

	assert.True(t, tx.Order.Valid)
	assert.Equal(t, 21, tx.Order.Hour)
	assert.Equal(t, "Friday", tx.Order.Weekday)
	assert.Equal(t, 2024, tx.Order.ISOYear)
	assert.Equal(t, 9, tx.Order.ISOWeek)
	assert.Equal(t, 3, tx.Event.Month)
	assert.Equal(t, 10, tx.Event.ISOWeek)
}

func TestParse_SameDayPurchaseIsZeroDays(t *testing.T) {
	tx := Parse(record("Monday",
		models.ColOrderDate, "2024-03-04 18:30:00",
		models.ColEventDate, "2024-03-04",
	))
	require.True(t, tx.DaysBeforeEvent.Valid)
	assert.EqualValues(t, 0, tx.DaysBeforeEvent.Int64)
}

func TestParse_BadFieldsAreNulledNotDropped(t *testing.T) {
	recs := []models.RawRecord{
		record("Monday", models.ColOrderDate, "yesterday", models.ColEventDate, "2024-03-04",
			models.ColGrossSales, "n/a", models.ColTicketQty, "-1"),
		record("Monday", models.ColOrderDate, "2024-03-01 10:00:00", models.ColEventDate, "",
			models.ColGrossSales, "10", models.ColTicketQty, "2.0"),
	}
	txs, stats := Prepare(recs)
	require.Len(t, txs, 2)
	assert.Equal(t, models.PrepareStats{Total: 2, OrderDateParsed: 1, EventDateParsed: 1, GrossParsed: 1, QuantityParsed: 1}, stats)

	assert.False(t, txs[0].OrderDate.Valid)
	assert.False(t, txs[0].DaysBeforeEvent.Valid)
	assert.False(t, txs[0].GrossSales.Valid)
	assert.False(t, txs[0].TicketQty.Valid)
	assert.Equal(t, "", txs[0].CustomerID)

	assert.Equal(t, "", txs[1].ShowID)
	assert.EqualValues(t, 2, txs[1].TicketQty.Int64)
}

func TestEnrich_Idempotent(t *testing.T) {
	txs, _ := Prepare([]models.RawRecord{
		record("Saturday", models.ColOrderDate, "2024-02-28 09:00:00", models.ColEventDate, "2024-03-02",
			models.ColBuyerEmail, "Someone@Example.org"),
		record("Saturday", models.ColOrderDate, "bad", models.ColEventDate, "03/09/2024 20:00"),
	})
	for _, tx := range txs {
		once := tx
		Enrich(&once)
		twice := once
		Enrich(&twice)
		assert.Equal(t, tx, once)
		assert.Equal(t, once, twice)
	}
}

func TestParseTime_Layouts(t *testing.T) {
	for _, s := range []string{
		"2024-03-01 10:00:00",
		"2024-03-01T10:00:00",
		"2024-03-01T10:00:00Z",
		"2024-03-01 10:00",
		"2024-03-01",
		"03/01/2024 10:00:00",
		"3/1/2024",
	} {
		got := ParseTime(s)
		require.True(t, got.Valid, s)
		assert.Equal(t, time.March, got.Time.Month(), s)
		assert.Equal(t, 1, got.Time.Day(), s)
	}
	assert.False(t, ParseTime("01-03-2024").Valid)
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	a := time.Date(2024, 3, 9, 23, 0, 0, 0, ny)
	b := time.Date(2024, 3, 11, 1, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}
