package models

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

/*
LOAD → raw rows as read from the CSV exports or the orders table.
*/

// Column headers of the ticketing export.
const (
	ColOrderID       = "Order ID"
	ColOrderDate     = "Order date"
	ColEventDate     = "Event start date"
	ColEventName     = "Event name"
	ColBuyerEmail    = "Buyer email"
	ColCity          = "Purchaser city"
	ColState         = "Purchaser state"
	ColPaymentType   = "Payment type"
	ColTicketQty     = "Ticket quantity"
	ColGrossSales    = "Gross sales"
	ColTicketRevenue = "Ticket revenue"
	ColNetSales      = "Net sales"
)

// RequiredColumns must all be present in a file header for the file to be loaded.
var RequiredColumns = []string{ColOrderID, ColOrderDate, ColEventDate}

// ErrDataUnavailable is returned when no usable input could be found.
var ErrDataUnavailable = errors.New("data unavailable")

// RawRecord is one data row keyed by header name, tagged with the weekday of its source file.
type RawRecord struct {
	Fields    map[string]string
	DayOfWeek string
	Source    string
}

// Get returns the trimmed value of a column, or "" when the column is absent.
func (r RawRecord) Get(col string) string {
	return strings.TrimSpace(r.Fields[col])
}

// FileStat describes one loaded input file.
type FileStat struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
	Rows int    `json:"rows"`
}

// LoadStats summarises a load.
type LoadStats struct {
	Files   []FileStat `json:"files"`
	Skipped []string   `json:"skipped,omitempty"`
	Total   int        `json:"total"`
}

/*
PREPARE → typed transaction with derived fields.
*/

// TimeParts are the calendar components extracted from a timestamp.
type TimeParts struct {
	Valid   bool
	Hour    int
	Weekday string
	ISOYear int
	ISOWeek int
	Month   int
	Year    int
}

// Transaction is one ticket order line after parsing and enrichment.
type Transaction struct {
	OrderID       string
	OrderDate     sql.NullTime
	EventDate     sql.NullTime
	EventName     string
	BuyerEmail    string
	City          string
	State         string
	PaymentType   string
	TicketQty     sql.NullInt64
	GrossSales    decimal.NullDecimal
	TicketRevenue decimal.NullDecimal
	NetSales      decimal.NullDecimal
	DayOfWeek     string

	// Derived by features.Enrich.
	DaysBeforeEvent sql.NullInt64
	CustomerID      string
	ShowID          string
	Order           TimeParts
	Event           TimeParts
}

// PrepareStats counts how many rows had each field successfully parsed.
type PrepareStats struct {
	Total           int `json:"total"`
	OrderDateParsed int `json:"order_date_parsed"`
	EventDateParsed int `json:"event_date_parsed"`
	GrossParsed     int `json:"gross_parsed"`
	QuantityParsed  int `json:"quantity_parsed"`
}

/*
CONFIG → run parameters
*/

// Config holds the parameters passed to the calculator.
type Config struct {
	StartMonth string // "MMYYYY", inclusive, on event date; both empty = no window
	EndMonth   string // "MMYYYY", inclusive
	Verbose    bool
}

// Window identifies the event-month window, "" when there is none.
func (c Config) Window() string {
	if c.StartMonth == "" && c.EndMonth == "" {
		return ""
	}
	return c.StartMonth + "-" + c.EndMonth
}

// Heuristics are the fixed business thresholds behind the recommendations.
var Heuristics = struct {
	FreeTicketShareThreshold float64
	SameDayShareThreshold    float64
	RepeatOrderThreshold     int
}{
	FreeTicketShareThreshold: 0.15,
	SameDayShareThreshold:    0.15,
	RepeatOrderThreshold:     3,
}

// PaymentFree is the payment type of complimentary tickets.
const PaymentFree = "Free"
