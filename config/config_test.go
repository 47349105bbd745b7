package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"task_api/config"
	dberrors "task_api/errors"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"http_port": 9090,
		"route_prefix": "/api",
		"table_name": "dbo.Tasks",
		"http_write_timeout": "2m",
		"connection_options": {
			"query_timeout": "5s",
			"connect_timeout": 2000000000,
			"prepared_statements": false
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.HTTPPort != 9090 || cfg.RoutePrefix != "/api" || cfg.TableName != "dbo.Tasks" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.HTTPAddr != "0.0.0.0" {
		t.Errorf("Default http_addr should survive partial files, got %q", cfg.HTTPAddr)
	}
	if cfg.ConnOptions.QueryTimeout.ToStd() != 5*time.Second {
		t.Errorf("query_timeout = %v, want 5s", cfg.ConnOptions.QueryTimeout.ToStd())
	}
	if cfg.ConnOptions.ConnectTimeout.ToStd() != 2*time.Second {
		t.Errorf("connect_timeout = %v, want 2s", cfg.ConnOptions.ConnectTimeout.ToStd())
	}
	if cfg.HTTPWriteTimeout.ToStd() != 2*time.Minute {
		t.Errorf("http_write_timeout = %v, want 2m", cfg.HTTPWriteTimeout.ToStd())
	}
	if cfg.HTTPReadTimeout.ToStd() != 15*time.Second {
		t.Errorf("http_read_timeout default = %v, want 15s", cfg.HTTPReadTimeout.ToStd())
	}
	if cfg.ConnOptions.PreparedStmts {
		t.Errorf("prepared_statements should be false")
	}
	if cfg.ConnectionStringEnv != config.DefaultConnectionStringEnv {
		t.Errorf("connection_string_env = %q", cfg.ConnectionStringEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"connection_options":{"query_timeout":"soon"}}`), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := config.LoadConfig(path); err == nil {
		t.Error("Expected an error for an invalid duration")
	}
}

func TestResolveConnectionString(t *testing.T) {
	t.Setenv("TASKS_DSN", "  sqlserver://sa:pw@db:1433?database=tasks  ")

	cfg := config.DefaultConfig()
	cfg.ConnectionStringEnv = "TASKS_DSN"
	cfg.ResolveConnectionString()
	if cfg.ConnectionString != "sqlserver://sa:pw@db:1433?database=tasks" {
		t.Errorf("ConnectionString = %q", cfg.ConnectionString)
	}

	t.Setenv(config.DefaultConnectionStringEnv, "")
	cfg = config.DefaultConfig()
	cfg.ResolveConnectionString()
	if cfg.ConnectionString != "" {
		t.Errorf("Expected empty ConnectionString, got %q", cfg.ConnectionString)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *config.Config) {}},
		{name: "schema qualified table", mutate: func(c *config.Config) { c.TableName = "dbo.Tasks" }},
		{name: "injected table", mutate: func(c *config.Config) { c.TableName = "Tasks; DROP TABLE Tasks" }, wantErr: true},
		{name: "empty table", mutate: func(c *config.Config) { c.TableName = "" }, wantErr: true},
		{name: "prefix without slash", mutate: func(c *config.Config) { c.RoutePrefix = "api" }, wantErr: true},
		{name: "prefix trailing slash", mutate: func(c *config.Config) { c.RoutePrefix = "/api/" }, wantErr: true},
		{name: "bad port", mutate: func(c *config.Config) { c.HTTPPort = 70000 }, wantErr: true},
		{name: "zero timeouts", mutate: func(c *config.Config) {
			c.HTTPReadTimeout, c.HTTPWriteTimeout = 0, 0
			c.ConnOptions.ConnectTimeout, c.ConnOptions.QueryTimeout = 0, 0
		}},
		{name: "negative connect timeout", mutate: func(c *config.Config) { c.ConnOptions.ConnectTimeout = config.Duration(-time.Second) }, wantErr: true},
		{name: "negative write timeout", mutate: func(c *config.Config) { c.HTTPWriteTimeout = config.Duration(-time.Second) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *dberrors.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Expected *errors.ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestDurationMarshalJSON(t *testing.T) {
	out, err := config.Duration(90 * time.Second).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(out) != `"1m30s"` {
		t.Errorf("MarshalJSON = %s, want \"1m30s\"", out)
	}
}
