package tests

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"task_api/config"
	"task_api/db"
)

// generateTestDBPath creates a unique path for a test SQLite database
func generateTestDBPath(t *testing.T) string {
	tempDir := os.TempDir()
	safeTestName := strings.ReplaceAll(t.Name(), "/", "_")
	safeTestName = strings.ReplaceAll(safeTestName, "\\", "_")
	safeTestName = strings.ReplaceAll(safeTestName, ":", "_")
	safeTestName = strings.ReplaceAll(safeTestName, " ", "_")
	fileName := fmt.Sprintf("task_api_test_%s_data.db", safeTestName)
	return filepath.ToSlash(filepath.Clean(filepath.Join(tempDir, fileName)))
}

// ConnOptions returns connection options suited to SQLite test files.
func ConnOptions() config.ConnectionOptions {
	return config.ConnectionOptions{
		DriverParams: map[string]map[string]string{
			"sqlite": {
				"_pragma": "busy_timeout(5000)",
			},
		},
		ConnectTimeout: config.Duration(10 * time.Second),
		QueryTimeout:   config.Duration(30 * time.Second),
		PreparedStmts:  false,
		NoPing:         false,
	}
}

// Config returns a default configuration pointed at the given test database.
func Config(dsn string) config.Config {
	cfg := config.DefaultConfig()
	cfg.HTTPPort = 0
	cfg.ConnectionString = dsn
	cfg.ConnOptions = ConnOptions()
	return cfg
}

// SetupTestDB creates a SQLite database holding an empty Tasks table.
// It returns an open connection for direct inspection, the DSN for the
// code under test, and a cleanup function.
func SetupTestDB(t *testing.T) (*db.Connection, string, func()) {
	currentTestDBPath := generateTestDBPath(t)
	if err := os.Remove(currentTestDBPath); err != nil && !os.IsNotExist(err) {
		t.Logf("Warning: could not remove existing test database %s: %v", currentTestDBPath, err)
	}

	conn, err := db.Open(context.Background(), currentTestDBPath, ConnOptions())
	if err != nil {
		t.Fatalf("Failed to open test database (%s): %v", currentTestDBPath, err)
	}

	createTasksTable(t, conn.DB, currentTestDBPath)

	cleanup := func() {
		if conn != nil {
			conn.Close()
		}
		if err := os.Remove(currentTestDBPath); err != nil && !os.IsNotExist(err) {
			t.Logf("Warning: could not remove test database %s during cleanup: %v", currentTestDBPath, err)
		}
	}

	return conn, currentTestDBPath, cleanup
}

func createTasksTable(t *testing.T, db *sql.DB, dbPath string) {
	if _, err := db.Exec(`DROP TABLE IF EXISTS Tasks`); err != nil {
		t.Fatalf("Failed to drop Tasks table in %s: %v", dbPath, err)
	}

	_, err := db.Exec(`
		CREATE TABLE Tasks (
			Id TEXT PRIMARY KEY,
			Title TEXT NOT NULL,
			Description TEXT NOT NULL,
			IsCompleted BOOLEAN NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create Tasks table in %s: %v", dbPath, err)
	}
}

// CountTasks returns the number of rows in the Tasks table.
func CountTasks(t *testing.T, db *sql.DB) int {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM Tasks`).Scan(&n); err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	return n
}

// InsertTask writes a row directly, bypassing the code under test.
func InsertTask(t *testing.T, db *sql.DB, id, title, description string, done bool) {
	if _, err := db.Exec(`INSERT INTO Tasks (Id, Title, Description, IsCompleted) VALUES (?, ?, ?, ?)`, id, title, description, done); err != nil {
		t.Fatalf("Failed to insert task %s: %v", id, err)
	}
}
