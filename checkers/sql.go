package checkers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/jonwraymond/healthops/health"
)

// DefaultSQLDriver is the database/sql driver name used by NewSQL.
const DefaultSQLDriver = "mysql"

// DefaultSQLQuery is run after a successful ping.
const DefaultSQLQuery = "SELECT 1"

// SQL checks a database reachable through database/sql.
type SQL struct {
	name     string
	dsn      string
	user     string
	password string
	driver   string
	query    string
}

// SQLOption configures a SQL checker.
type SQLOption func(*SQL)

// WithDriver selects a registered database/sql driver.
func WithDriver(driver string) SQLOption {
	return func(c *SQL) {
		if driver != "" {
			c.driver = driver
		}
	}
}

// WithQuery replaces the query run after the ping.
func WithQuery(query string) SQLOption {
	return func(c *SQL) {
		c.query = query
	}
}

// NewSQL creates a SQL checker. For the mysql driver a non-empty user or
// password replaces the one in dsn.
func NewSQL(name, dsn, user, password string, opts ...SQLOption) *SQL {
	c := &SQL{
		name:     name,
		dsn:      dsn,
		user:     user,
		password: password,
		driver:   DefaultSQLDriver,
		query:    DefaultSQLQuery,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the check name.
func (c *SQL) Name() string {
	return c.name
}

// Check opens a single connection, pings it and runs the query.
func (c *SQL) Check(ctx context.Context) health.Result {
	dsn := c.dsn
	if c.driver == DefaultSQLDriver {
		var err error
		if dsn, err = mysqlDSN(c.dsn, c.user, c.password); err != nil {
			return health.Unhealthy("invalid connection string", err)
		}
	}

	db, err := sql.Open(c.driver, dsn)
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("open %s: %v", c.driver, err), err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return health.Failure("ping", err)
	}

	if c.query != "" {
		var v any
		if err := db.QueryRowContext(ctx, c.query).Scan(&v); err != nil {
			return health.Failure("query", err)
		}
	}

	return health.Healthy("database is reachable")
}

func mysqlDSN(dsn, user, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	if user != "" {
		cfg.User = user
	}
	if password != "" {
		cfg.Passwd = password
	}
	return cfg.FormatDSN(), nil
}
