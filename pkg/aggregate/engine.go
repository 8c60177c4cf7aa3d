package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"ticket-analytics/pkg/models"
)

// KeyFunc extracts a grouping key; ok=false leaves the row out of every group.
type KeyFunc[K comparable] func(tx *models.Transaction) (key K, ok bool)

// Numeric reads a numeric column; ok=false marks the value as missing.
type Numeric func(tx *models.Transaction) (float64, bool)

// Categorical reads a string column; "" is treated as missing.
type Categorical func(tx *models.Transaction) string

// Decimal reads a currency column.
type Decimal func(tx *models.Transaction) decimal.NullDecimal

// Columns.
var (
	GrossSales Decimal = func(tx *models.Transaction) decimal.NullDecimal { return tx.GrossSales }

	TicketQuantity Numeric = func(tx *models.Transaction) (float64, bool) {
		return float64(tx.TicketQty.Int64), tx.TicketQty.Valid
	}
	DaysBeforeEvent Numeric = func(tx *models.Transaction) (float64, bool) {
		return float64(tx.DaysBeforeEvent.Int64), tx.DaysBeforeEvent.Valid
	}
	Revenue Numeric = func(tx *models.Transaction) (float64, bool) {
		return tx.GrossSales.Decimal.InexactFloat64(), tx.GrossSales.Valid
	}

	CustomerID  Categorical = func(tx *models.Transaction) string { return tx.CustomerID }
	DayOfWeek   Categorical = func(tx *models.Transaction) string { return tx.DayOfWeek }
	PaymentType Categorical = func(tx *models.Transaction) string { return tx.PaymentType }
	State       Categorical = func(tx *models.Transaction) string { return tx.State }
	City        Categorical = func(tx *models.Transaction) string { return tx.City }
	EventName   Categorical = func(tx *models.Transaction) string { return tx.EventName }
	ShowID      Categorical = func(tx *models.Transaction) string { return tx.ShowID }
	EventDate   Categorical = func(tx *models.Transaction) string {
		if !tx.EventDate.Valid {
			return ""
		}
		return tx.EventDate.Time.Format(dateLayout)
	}
)

const dateLayout = "2006-01-02"

// Groups is the result of GroupBy. Keys keep the order of first appearance.
type Groups[K comparable] struct {
	keys []K
	rows map[K][]*models.Transaction
}

// GroupBy partitions txs by key. The transactions are referenced, not copied.
func GroupBy[K comparable](txs []models.Transaction, key KeyFunc[K]) *Groups[K] {
	g := &Groups[K]{rows: make(map[K][]*models.Transaction)}
	for i := range txs {
		tx := &txs[i]
		k, ok := key(tx)
		if !ok {
			continue
		}
		if _, seen := g.rows[k]; !seen {
			g.keys = append(g.keys, k)
		}
		g.rows[k] = append(g.rows[k], tx)
	}
	return g
}

// Keys returns the group keys in first-appearance order.
func (g *Groups[K]) Keys() []K { return g.keys }

// Len is the number of groups.
func (g *Groups[K]) Len() int { return len(g.keys) }

// Rows returns the members of one group.
func (g *Groups[K]) Rows(k K) []*models.Transaction { return g.rows[k] }

// Count is the number of rows in the group.
func (g *Groups[K]) Count(k K) int { return len(g.rows[k]) }

// Sum adds the non-missing values of col.
func (g *Groups[K]) Sum(k K, col Numeric) float64 {
	s := 0.0
	for _, tx := range g.rows[k] {
		if v, ok := col(tx); ok {
			s += v
		}
	}
	return s
}

// SumDecimal adds a currency column exactly.
func (g *Groups[K]) SumDecimal(k K, col Decimal) decimal.Decimal {
	return sumDecimal(g.rows[k], col)
}

// Mean averages the non-missing values of col; 0 when there are none.
func (g *Groups[K]) Mean(k K, col Numeric) float64 {
	s, n := 0.0, 0
	for _, tx := range g.rows[k] {
		if v, ok := col(tx); ok {
			s += v
			n++
		}
	}
	return ratio(s, float64(n))
}

// NUnique counts distinct non-empty values of col.
func (g *Groups[K]) NUnique(k K, col Categorical) int {
	return len(distinct(g.rows[k], col))
}

// First returns the first non-empty value of col.
func (g *Groups[K]) First(k K, col Categorical) string {
	for _, tx := range g.rows[k] {
		if v := col(tx); v != "" {
			return v
		}
	}
	return ""
}

// Distinct returns the sorted distinct non-empty values of col.
func (g *Groups[K]) Distinct(k K, col Categorical) []string {
	set := distinct(g.rows[k], col)
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Reduce applies a custom reduction to one group.
func Reduce[K comparable, V any](g *Groups[K], k K, fn func(rows []*models.Transaction) V) V {
	return fn(g.rows[k])
}

func distinct(rows []*models.Transaction, col Categorical) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tx := range rows {
		if v := col(tx); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func sumDecimal(rows []*models.Transaction, col Decimal) decimal.Decimal {
	s := decimal.Zero
	for _, tx := range rows {
		if v := col(tx); v.Valid {
			s = s.Add(v.Decimal)
		}
	}
	return s
}

// money rounds a currency sum to cents for reporting.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// All groups every row under a single key.
func All(tx *models.Transaction) (struct{}, bool) { return struct{}{}, true }

// By builds a KeyFunc from a categorical column, skipping empty values.
func By(col Categorical) KeyFunc[string] {
	return func(tx *models.Transaction) (string, bool) {
		v := col(tx)
		return v, v != ""
	}
}

// ByOrUnknown is By with empty values reported as "Unknown".
func ByOrUnknown(col Categorical) KeyFunc[string] {
	return func(tx *models.Transaction) (string, bool) {
		if v := col(tx); v != "" {
			return v, true
		}
		return "Unknown", true
	}
}
