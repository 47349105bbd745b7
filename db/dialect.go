package db

import (
	"strconv"
	"strings"
)

// Dialect captures the per-driver differences in statement text.
type Dialect struct {
	Name string
}

var (
	Postgres  = Dialect{Name: "postgres"}
	SQLServer = Dialect{Name: "sqlserver"}
	Oracle    = Dialect{Name: "oracle"}
	SQLite    = Dialect{Name: "sqlite"}
)

// DialectFor maps a registered database/sql driver name to its dialect.
// Unknown drivers fall back to SQLite's '?' placeholders.
func DialectFor(driver string) Dialect {
	switch strings.ToLower(driver) {
	case "postgres", "pgx", "pq":
		return Postgres
	case "sqlserver", "mssql", "azuresql":
		return SQLServer
	case "oracle", "godror":
		return Oracle
	default:
		return SQLite
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case Postgres:
		return "$" + strconv.Itoa(n)
	case SQLServer:
		return "@p" + strconv.Itoa(n)
	case Oracle:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// SelectUUID returns a select-list expression that yields column as its
// canonical text form. SQL Server hands uniqueidentifier back as mixed-endian
// bytes, so it is converted server-side.
func (d Dialect) SelectUUID(column string) string {
	if d == SQLServer {
		return "CONVERT(NVARCHAR(36), " + column + ")"
	}
	return column
}
