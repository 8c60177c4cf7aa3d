package features

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"ticket-analytics/pkg/models"
)

// Layouts tried, in order, for order timestamps and event dates.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006",
}

// Prepare parses every raw record into an enriched transaction.
// Fields that fail to parse are left null; no record is dropped.
func Prepare(records []models.RawRecord) ([]models.Transaction, models.PrepareStats) {
	stats := models.PrepareStats{Total: len(records)}
	out := make([]models.Transaction, 0, len(records))
	for _, r := range records {
		tx := Parse(r)
		if tx.OrderDate.Valid {
			stats.OrderDateParsed++
		}
		if tx.EventDate.Valid {
			stats.EventDateParsed++
		}
		if tx.GrossSales.Valid {
			stats.GrossParsed++
		}
		if tx.TicketQty.Valid {
			stats.QuantityParsed++
		}
		out = append(out, tx)
	}
	log.Info().
		Int("rows", stats.Total).
		Int("order_date", stats.OrderDateParsed).
		Int("event_date", stats.EventDateParsed).
		Int("gross_sales", stats.GrossParsed).
		Msg("Prepared transactions")
	return out, stats
}

// Parse converts one raw record and fills its derived fields.
func Parse(r models.RawRecord) models.Transaction {
	tx := models.Transaction{
		OrderID:       r.Get(models.ColOrderID),
		OrderDate:     ParseTime(r.Get(models.ColOrderDate)),
		EventDate:     ParseTime(r.Get(models.ColEventDate)),
		EventName:     r.Get(models.ColEventName),
		BuyerEmail:    r.Get(models.ColBuyerEmail),
		City:          r.Get(models.ColCity),
		State:         r.Get(models.ColState),
		PaymentType:   r.Get(models.ColPaymentType),
		TicketQty:     ParseQuantity(r.Get(models.ColTicketQty)),
		GrossSales:    ParseMoney(r.Get(models.ColGrossSales)),
		TicketRevenue: ParseMoney(r.Get(models.ColTicketRevenue)),
		NetSales:      ParseMoney(r.Get(models.ColNetSales)),
		DayOfWeek:     r.DayOfWeek,
	}
	if tx.EventDate.Valid {
		tx.EventDate.Time = now.New(tx.EventDate.Time).BeginningOfDay()
	}
	Enrich(&tx)
	return tx
}

// Enrich recomputes every derived field from the source fields. Running it
// again on an enriched transaction yields the same values.
func Enrich(tx *models.Transaction) {
	tx.CustomerID = strings.ToLower(strings.TrimSpace(tx.BuyerEmail))
	tx.Order = timeParts(tx.OrderDate)
	tx.Event = timeParts(tx.EventDate)

	tx.ShowID = ""
	if tx.EventDate.Valid {
		tx.ShowID = tx.EventDate.Time.Format("2006-01-02") + "_" + tx.DayOfWeek
	}

	tx.DaysBeforeEvent = sql.NullInt64{}
	if tx.OrderDate.Valid && tx.EventDate.Valid {
		tx.DaysBeforeEvent = sql.NullInt64{Int64: int64(DaysBetween(tx.OrderDate.Time, tx.EventDate.Time)), Valid: true}
	}
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(db.Sub(da).Hours() / 24))
}

func timeParts(t sql.NullTime) models.TimeParts {
	if !t.Valid {
		return models.TimeParts{}
	}
	y, w := t.Time.ISOWeek()
	return models.TimeParts{
		Valid:   true,
		Hour:    t.Time.Hour(),
		Weekday: t.Time.Weekday().String(),
		ISOYear: y,
		ISOWeek: w,
		Month:   int(t.Time.Month()),
		Year:    t.Time.Year(),
	}
}

// ParseTime tries each known layout; the result is in UTC wall-clock.
func ParseTime(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}

// ParseMoney accepts "1234.5", "$1,234.50" and " 12 ".
func ParseMoney(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParseQuantity accepts integers and integral floats such as "2.0".
func ParseQuantity(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: n, Valid: true}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || f != math.Trunc(f) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f), Valid: true}
}
