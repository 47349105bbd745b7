package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"task_api/config"
	dberrors "task_api/errors"

	"github.com/microsoft/go-mssqldb/azuread"
	"github.com/xo/dburl"

	// Import SQL drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"
)

// Connection is a single-use handle on the store. Callers open one per
// request and close it on every exit path.
type Connection struct {
	DB      *sql.DB
	Config  config.ConnectionOptions
	Driver  string
	Dialect Dialect
}

// SafeParse wraps dburl.Parse method to prevent leaking credentials in error messages
func SafeParse(rawURL string) (*dburl.URL, error) {
	expandedURL := os.ExpandEnv(rawURL)
	parsed, err := dburl.Parse(expandedURL)
	if err != nil {
		if uerr := new(url.Error); errors.As(err, &uerr) {
			return nil, fmt.Errorf("invalid DSN (underlying error: %w)", uerr.Err)
		}
		return nil, fmt.Errorf("invalid DSN (dburl.Parse error: %w)", err)
	}
	return parsed, nil
}

// BuildDSN constructs a data source name (connection string) based on the database type and parameters
func BuildDSN(dbType, username, password, host, port, database string) (string, error) {
	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		if database == "" {
			return "", errors.New("database path cannot be empty for SQLite")
		}
		return database, nil
	case "pg", "postgres", "postgresql", "pgx":
		portVal := "5432"
		if port != "" {
			portVal = port
		}
		scheme := "postgres"
		if strings.EqualFold(dbType, "pgx") {
			scheme = "pgx"
		}
		return fmt.Sprintf("%s://%s:%s@%s:%s/%s", scheme, username, password, host, portVal, database), nil
	case "oracle":
		portVal := "1521"
		if port != "" {
			portVal = port
		}
		return fmt.Sprintf("oracle://%s:%s@%s:%s/%s", username, password, host, portVal, database), nil
	case "sqlserver", "mssql", "azuresql":
		portVal := "1433"
		if port != "" {
			portVal = port
		}
		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s", username, password, host, portVal, database), nil
	default:
		dsn := fmt.Sprintf("%s://%s:%s@%s:%s/%s", dbType, username, password, host, port, database)
		u, err := dburl.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("failed to parse constructed DSN: %w", err)
		}
		return u.String(), nil
	}
}

// isSQLitePath reports whether dsn is a bare file path or memory name that
// dburl would not recognize without a scheme.
func isSQLitePath(dsn string) bool {
	if strings.Contains(dsn, "://") {
		return false
	}
	lower := strings.ToLower(dsn)
	return strings.HasSuffix(lower, ".db") ||
		strings.HasSuffix(lower, ".sqlite") ||
		strings.HasSuffix(lower, ".sqlite3") ||
		strings.Contains(lower, "sqlite") ||
		strings.HasSuffix(dsn, ":memory:")
}

// Open opens a connection to the store described by dsn
func Open(ctx context.Context, dsn string, connOpts config.ConnectionOptions) (*Connection, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, dberrors.NewConfigError("connection string is not set")
	}
	if isSQLitePath(dsn) {
		dsn = "sqlite://" + dsn
	}

	parsedURL, err := SafeParse(dsn)
	if err != nil {
		return nil, dberrors.NewDBError(fmt.Sprintf("failed to parse DSN: %v", err))
	}
	redacted := parsedURL.Redacted()

	queryValues, qErr := url.ParseQuery(parsedURL.RawQuery)
	if qErr != nil {
		return nil, dberrors.NewDBError(fmt.Sprintf("failed to parse DSN query parameters (dsn: '%s'): %v", redacted, qErr))
	}

	// dburl reports "sqlite3" for the sqlite scheme; modernc registers "sqlite".
	lookupDriver := strings.ToLower(parsedURL.Driver)
	if lookupDriver == "sqlite3" {
		lookupDriver = "sqlite"
	}

	if driverSpecificParams, ok := connOpts.DriverParams[lookupDriver]; ok {
		for key, value := range driverSpecificParams {
			queryValues.Set(key, value)
		}
	}
	parsedURL.RawQuery = queryValues.Encode()

	driverToUse := parsedURL.Driver
	if parsedURL.GoDriver != "" {
		driverToUse = parsedURL.GoDriver
	}
	if driverToUse == "sqlite3" {
		driverToUse = "sqlite"
	}

	var dsnForSqlOpen string
	switch {
	case driverToUse == "sqlite":
		// modernc.org/sqlite wants the bare path with query parameters appended.
		dsnForSqlOpen = parsedURL.DSN
		if parsedURL.RawQuery != "" {
			dsnForSqlOpen = dsnForSqlOpen + "?" + parsedURL.RawQuery
		}
	default:
		// Re-parse so the driver DSN includes the merged parameters.
		merged, err := dburl.Parse(parsedURL.String())
		if err != nil {
			return nil, dberrors.NewDBError(fmt.Sprintf("failed to rebuild DSN (dsn: '%s'): %v", redacted, err))
		}
		dsnForSqlOpen = merged.DSN
		// Entra ID authentication goes through the azuread driver.
		if driverToUse == "sqlserver" && queryValues.Get("fedauth") != "" {
			driverToUse = azuread.DriverName
		}
	}

	db, sqlOpenErr := sql.Open(driverToUse, dsnForSqlOpen)
	if sqlOpenErr != nil {
		return nil, dberrors.NewDBError(fmt.Sprintf("failed to open database connection (driver: %s, dsn: '%s'): %v", driverToUse, redacted, sqlOpenErr))
	}

	// One statement per request; the handle is never shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if !connOpts.NoPing {
		pingCtx, pingCancel := connectContext(ctx, connOpts.ConnectTimeout.ToStd())
		defer pingCancel()

		if pingErr := db.PingContext(pingCtx); pingErr != nil {
			db.Close()
			return nil, dberrors.NewDBError(fmt.Sprintf("ping failed (driver: %s, dsn: '%s'): %v", driverToUse, redacted, pingErr))
		}
	}

	return &Connection{
		DB:      db,
		Config:  connOpts,
		Driver:  driverToUse,
		Dialect: DialectFor(driverToUse),
	}, nil
}

// connectContext bounds the ping by timeout. A non-positive timeout leaves
// only the caller's deadline in effect.
func connectContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// Close closes the database connection
func (c *Connection) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Exec runs a parameterized statement that returns no rows
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.DB == nil {
		return nil, dberrors.NewDBError("database connection is nil")
	}

	if c.Config.PreparedStmts {
		stmt, err := c.DB.PrepareContext(ctx, query)
		if err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("prepare statement failed: %v", err))
		}
		defer stmt.Close()
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("execute prepared statement failed: %v", err))
		}
		return res, nil
	}

	res, err := c.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, dberrors.NewQueryError(fmt.Sprintf("execute statement failed: %v", err))
	}
	return res, nil
}

// Query runs a parameterized query and returns the rows
func (c *Connection) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.DB == nil {
		return nil, dberrors.NewDBError("database connection is nil")
	}

	if c.Config.PreparedStmts {
		stmt, err := c.DB.PrepareContext(ctx, query)
		if err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("prepare query failed: %v", err))
		}
		defer stmt.Close()
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return nil, dberrors.NewQueryError(fmt.Sprintf("execute prepared query failed: %v", err))
		}
		return rows, nil
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberrors.NewQueryError(fmt.Sprintf("execute query failed: %v", err))
	}
	return rows, nil
}
