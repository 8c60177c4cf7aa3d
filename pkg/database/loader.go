package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"ticket-analytics/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// DefaultTable is the orders table read when none is configured.
const DefaultTable = "ticket_orders"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// tableColumns maps the table's snake_case columns to the export headers.
var tableColumns = []struct {
	column string
	header string
}{
	{"order_id", models.ColOrderID},
	{"order_date", models.ColOrderDate},
	{"event_start_date", models.ColEventDate},
	{"event_name", models.ColEventName},
	{"buyer_email", models.ColBuyerEmail},
	{"purchaser_city", models.ColCity},
	{"purchaser_state", models.ColState},
	{"payment_type", models.ColPaymentType},
	{"ticket_quantity", models.ColTicketQty},
	{"gross_sales", models.ColGrossSales},
	{"ticket_revenue", models.ColTicketRevenue},
	{"net_sales", models.ColNetSales},
}

// Open accepts mariadb://, mysql:// and sqlite:// URLs; anything else is handed to the MySQL driver.
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", errors.Wrapf(err, "open %s", driver)
	}
	if driver == "mysql" {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}
	return db, native, nil
}

func toDriverDSN(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "sqlite://") {
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", errors.New("dsn incomplete (sqlite path)")
		}
		return "sqlite", path, nil
	}
	native, err := toMySQLDSN(dsn)
	return "mysql", native, err
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", errors.Wrap(err, "parse dsn")
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", errors.New("dsn incomplete (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=false&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// TableSource reads order lines from a SQL table instead of CSV exports.
// Each row carries its weekday tag in a day_of_week column.
type TableSource struct {
	DB    *sql.DB
	Table string
}

// NewTableSource validates the table name.
func NewTableSource(db *sql.DB, table string) (*TableSource, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, errors.Errorf("invalid table %q", table)
	}
	return &TableSource{DB: db, Table: table}, nil
}

// requiredColumns must exist in the table; the other mapped columns are read when present.
var requiredColumns = []string{"order_id", "order_date", "event_start_date", "day_of_week"}

// columns lists the table's column names, lower-cased.
func (s *TableSource) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, s.Table))
	if err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "query %s: %v", s.Table, err)
	}
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "columns of %s", s.Table)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[strings.ToLower(n)] = true
	}
	return out, nil
}

// Load selects every row, in primary key order, as raw records keyed by export
// header. Optional columns missing from the table read as empty.
func (s *TableSource) Load(ctx context.Context) ([]models.RawRecord, models.LoadStats, error) {
	var stats models.LoadStats

	present, err := s.columns(ctx)
	if err != nil {
		return nil, stats, err
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, stats, errors.Wrapf(models.ErrDataUnavailable, "table %s lacks %s", s.Table, strings.Join(missing, ", "))
	}

	var (
		cols    []string
		headers []string
	)
	for _, c := range tableColumns {
		if !present[c.column] {
			log.Debug().Str("table", s.Table).Str("column", c.column).Msg("optional column absent")
			continue
		}
		cols = append(cols, fmt.Sprintf("CAST(%s AS CHAR)", c.column))
		headers = append(headers, c.header)
	}
	cols = append(cols, "day_of_week")
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY order_id`, strings.Join(cols, ", "), s.Table)

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, stats, errors.Wrapf(models.ErrDataUnavailable, "query %s: %v", s.Table, err)
	}
	defer rows.Close()

	perDay := map[string]int{}
	var order []string
	var out []models.RawRecord
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, stats, errors.Wrap(err, "scan order row")
		}
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			fields[h] = vals[i].String
		}
		day := vals[len(vals)-1].String
		if _, ok := perDay[day]; !ok {
			order = append(order, day)
		}
		perDay[day]++
		out = append(out, models.RawRecord{Fields: fields, DayOfWeek: day, Source: s.Table})
	}
	if err := rows.Err(); err != nil {
		return nil, stats, errors.Wrap(err, "iterate order rows")
	}

	for _, day := range order {
		stats.Files = append(stats.Files, models.FileStat{Name: s.Table, Tag: day, Rows: perDay[day]})
		log.Info().Str("day", day).Int("records", perDay[day]).Msgf("Loaded %d records from %s", perDay[day], day)
	}
	stats.Total = len(out)
	if len(out) == 0 {
		return nil, stats, errors.Wrapf(models.ErrDataUnavailable, "table %s is empty", s.Table)
	}
	log.Debug().Str("table", s.Table).Int("records", stats.Total).Msg("Total records loaded")
	return out, stats, nil
}

// Fingerprint combines the row count with the latest order id and date.
func (s *TableSource) Fingerprint(ctx context.Context) (string, error) {
	q := fmt.Sprintf(`SELECT COUNT(*), CAST(COALESCE(MAX(order_id), '') AS CHAR), CAST(COALESCE(MAX(order_date), '') AS CHAR) FROM %s`, s.Table)
	var (
		n        int64
		maxID    sql.NullString
		maxOrder sql.NullString
	)
	if err := s.DB.QueryRowContext(ctx, q).Scan(&n, &maxID, &maxOrder); err != nil {
		return "", errors.Wrapf(err, "fingerprint %s", s.Table)
	}
	return fmt.Sprintf("%s:%d:%s:%s", s.Table, n, maxID.String, maxOrder.String), nil
}
