package collector

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"RetentionSentinel/internal/model"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// orderColumns is the column contract of the orders table or view.
var orderColumns = []string{
	"customer_id", "customer_name", "order_date", "total",
	"order_status", "payment_status", "channel", "first_order_date",
	"account_manager", "country", "region",
}

// SQLSource loads orders from a table or view through database/sql.
type SQLSource struct {
	Driver string
	DSN    string
	Table  string

	db *sql.DB
}

// NewMySQLSource creates a source on a MySQL or MariaDB database. The DSN
// may be a mysql:// or mariadb:// URL or a native driver DSN.
func NewMySQLSource(dsn, table string) (*SQLSource, error) {
	native, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	return newSQLSource("mysql", native, table)
}

// NewPostgresSource creates a source on a PostgreSQL database through pgx.
func NewPostgresSource(dsn, table string) (*SQLSource, error) {
	return newSQLSource("pgx", dsn, table)
}

// NewSQLSource creates a source on an already opened database.
func NewSQLSource(db *sql.DB, table string) (*SQLSource, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return &SQLSource{Table: table, db: db}, nil
}

func newSQLSource(driver, dsn, table string) (*SQLSource, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &SQLSource{Driver: driver, DSN: dsn, Table: table, db: db}, nil
}

func checkTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func (s *SQLSource) Name() string {
	if s.Driver == "" {
		return "sql:" + s.Table
	}
	return s.Driver + ":" + s.Table
}

// Close closes the underlying database.
func (s *SQLSource) Close() error { return s.db.Close() }

func (s *SQLSource) query() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(orderColumns, ", "), s.Table)
}

func (s *SQLSource) Load(ctx context.Context) (Batch, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return Batch{}, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var batch Batch
	for rows.Next() {
		var (
			id, name, orderStatus, paymentStatus sql.NullString
			channel, manager, country, region    sql.NullString
			total                                sql.NullFloat64
			orderDate, firstDate                 dateValue
		)
		if err := rows.Scan(&id, &name, &orderDate, &total, &orderStatus, &paymentStatus,
			&channel, &firstDate, &manager, &country, &region); err != nil {
			return Batch{}, fmt.Errorf("scan order: %w", err)
		}
		if !id.Valid || id.String == "" || orderDate.Time.IsZero() || orderDate.err != nil || firstDate.err != nil {
			batch.Invalid++
			continue
		}
		batch.Orders = append(batch.Orders, model.Order{
			CustomerID:     id.String,
			CustomerName:   name.String,
			OrderDate:      orderDate.Time,
			Total:          total.Float64,
			OrderStatus:    orderStatus.String,
			PaymentStatus:  paymentStatus.String,
			Channel:        channel.String,
			FirstOrderDate: firstDate.Time,
			AccountManager: manager.String,
			Country:        country.String,
			Region:         region.String,
		})
	}
	if err := rows.Err(); err != nil {
		return Batch{}, fmt.Errorf("iterate orders: %w", err)
	}
	return batch, nil
}

// dateValue scans dates that drivers return either as time.Time or as text.
// A NULL leaves Time zero; unparseable text is kept in err.
type dateValue struct {
	Time time.Time
	err  error
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = v.UTC()
	case string:
		d.Time, d.err = parseDate(v)
	case []byte:
		d.Time, d.err = parseDate(string(v))
	default:
		d.err = fmt.Errorf("unsupported date type %T", src)
	}
	return nil
}

// toMySQLDSN converts mariadb:// and mysql:// URLs to the driver format.
// Other values are returned unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user, pass := "", ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn (user/host/db)")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, db), nil
}
