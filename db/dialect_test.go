package db_test

import (
	"testing"

	"task_api/db"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver      string
		want        db.Dialect
		placeholder string
		uuidExpr    string
	}{
		{"pgx", db.Postgres, "$2", "Id"},
		{"postgres", db.Postgres, "$2", "Id"},
		{"sqlserver", db.SQLServer, "@p2", "CONVERT(NVARCHAR(36), Id)"},
		{"azuresql", db.SQLServer, "@p2", "CONVERT(NVARCHAR(36), Id)"},
		{"oracle", db.Oracle, ":2", "Id"},
		{"sqlite", db.SQLite, "?", "Id"},
		{"something-else", db.SQLite, "?", "Id"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d := db.DialectFor(tt.driver)
			if d != tt.want {
				t.Fatalf("DialectFor(%q) = %q, want %q", tt.driver, d.Name, tt.want.Name)
			}
			if got := d.Placeholder(2); got != tt.placeholder {
				t.Errorf("Placeholder(2) = %q, want %q", got, tt.placeholder)
			}
			if got := d.SelectUUID("Id"); got != tt.uuidExpr {
				t.Errorf("SelectUUID(Id) = %q, want %q", got, tt.uuidExpr)
			}
		})
	}
}
