package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	dberrors "task_api/errors"
)

// Duration is a wrapper around time.Duration to allow for custom JSON unmarshaling.
type Duration time.Duration

// UnmarshalJSON parses a string duration (e.g., "5m", "1h") into a Duration type.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Numbers are read as nanoseconds.
		var num int64
		if errNum := json.Unmarshal(b, &num); errNum != nil {
			return fmt.Errorf("failed to unmarshal duration as string or number: %v, %v", err, errNum)
		}
		*d = Duration(time.Duration(num))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration string %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON converts Duration to its string representation for JSON.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// ToStd converts custom Duration to standard time.Duration.
func (d Duration) ToStd() time.Duration {
	return time.Duration(d)
}

// Config represents the server configuration. It is built once at startup
// and passed by value, so handlers never read the environment themselves.
type Config struct {
	HTTPAddr            string            `json:"http_addr"`
	HTTPPort            int               `json:"http_port"`
	RoutePrefix         string            `json:"route_prefix"`
	TableName           string            `json:"table_name"`
	ConnectionStringEnv string            `json:"connection_string_env"`
	AccessKeyHash       string            `json:"access_key_hash,omitempty"`
	HTTPReadTimeout     Duration          `json:"http_read_timeout"`
	HTTPWriteTimeout    Duration          `json:"http_write_timeout"`
	ConnOptions         ConnectionOptions `json:"connection_options"`

	// ConnectionString is resolved from ConnectionStringEnv by the caller
	// and never read from the config file.
	ConnectionString string `json:"-"`
}

// ConnectionOptions defines database connection parameters
type ConnectionOptions struct {
	DriverParams   map[string]map[string]string `json:"driver_params,omitempty"` // Generic parameters per driver
	ConnectTimeout Duration                     `json:"connect_timeout"`
	QueryTimeout   Duration                     `json:"query_timeout"`
	PreparedStmts  bool                         `json:"prepared_statements"`
	NoPing         bool                         `json:"no_ping"`
}

const DefaultConnectionStringEnv = "SqlConnectionString"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DefaultConfig returns a configuration with default settings
func DefaultConfig() Config {
	config := Config{
		HTTPAddr:            "0.0.0.0",
		HTTPPort:            8080,
		RoutePrefix:         "",
		TableName:           "Tasks",
		ConnectionStringEnv: DefaultConnectionStringEnv,
		HTTPReadTimeout:     Duration(15 * time.Second),
		HTTPWriteTimeout:    Duration(60 * time.Second),
		ConnOptions: ConnectionOptions{
			DriverParams:   make(map[string]map[string]string),
			ConnectTimeout: Duration(10 * time.Second),
			QueryTimeout:   Duration(30 * time.Second),
			PreparedStmts:  true,
		},
	}

	return config
}

// LoadConfig loads the server configuration from a file
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	// If no config file specified, use defaults
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ResolveConnectionString fills ConnectionString from the environment
// variable named by ConnectionStringEnv. An unset variable leaves it empty;
// store operations then fail with a ConfigError.
func (c *Config) ResolveConnectionString() {
	name := c.ConnectionStringEnv
	if name == "" {
		name = DefaultConnectionStringEnv
	}
	c.ConnectionString = strings.TrimSpace(os.Getenv(name))
}

// Validate checks the values that are interpolated into SQL or routes and
// rejects negative timeouts. A zero timeout means no limit.
func (c Config) Validate() error {
	if !identifierPattern.MatchString(c.TableName) {
		return dberrors.NewConfigError(fmt.Sprintf("invalid table_name %q", c.TableName))
	}
	if c.RoutePrefix != "" && (!strings.HasPrefix(c.RoutePrefix, "/") || strings.HasSuffix(c.RoutePrefix, "/")) {
		return dberrors.NewConfigError(fmt.Sprintf("route_prefix %q must start with '/' and not end with one", c.RoutePrefix))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return dberrors.NewConfigError(fmt.Sprintf("invalid http_port %d", c.HTTPPort))
	}
	for name, d := range map[string]Duration{
		"http_read_timeout":  c.HTTPReadTimeout,
		"http_write_timeout": c.HTTPWriteTimeout,
		"connect_timeout":    c.ConnOptions.ConnectTimeout,
		"query_timeout":      c.ConnOptions.QueryTimeout,
	} {
		if d < 0 {
			return dberrors.NewConfigError(fmt.Sprintf("%s must not be negative", name))
		}
	}
	return nil
}
