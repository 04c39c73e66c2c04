package contract

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/starsview/schema"
)

// Default values for configuration.
const (
	DefaultYearMin    = 2017
	DefaultYearMax    = 2026
	DefaultPrecision  = 4
	MaxPrecision      = 8
	DefaultTimeout    = 30 * time.Second
	DefaultDataSource = "data"
)

// DefaultWorkers is the default number of concurrent shard fetches.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// SeriesRef names one series on the command line as scope:entity.
type SeriesRef struct {
	Scope     schema.Scope
	EntityKey string
}

// ID returns the selection id of the reference.
func (r SeriesRef) ID() string {
	return schema.SeriesID(r.Scope, r.EntityKey)
}

// Config holds the runtime configuration for a session.
// This struct remains the "final, validated" config.
type Config struct {
	DataSource string
	Window     schema.YearWindow
	Workers    int
	Timeout    time.Duration

	Metric     schema.Metric
	MeasureKey string // empty selects the first measure in the catalog
	Scope      schema.Scope
	Search     string
	Selects    []SeriesRef
	Hides      []SeriesRef
	Quick      []string

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	UseSuppliedParents bool

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	// Aliases maps legacy parent names to their canonical parent.
	Aliases map[string]string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Data               string `mapstructure:"data"`
	YearMin            int    `mapstructure:"year-min"`
	YearMax            int    `mapstructure:"year-max"`
	Workers            int    `mapstructure:"workers"`
	Timeout            string `mapstructure:"timeout"`
	Metric             string `mapstructure:"metric"`
	Measure            string `mapstructure:"measure"`
	Precision          int    `mapstructure:"precision"`
	Output             string `mapstructure:"output"`
	OutputFile         string `mapstructure:"output-file"`
	Width              int    `mapstructure:"width"`
	Color              string `mapstructure:"color"`
	UseSuppliedParents bool   `mapstructure:"use-supplied-parents"`
	SnapshotBackend    string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect  string `mapstructure:"snapshot-db-connect"`

	// --- Fields from seriesCmd and entitiesCmd flags ---
	Scope  string   `mapstructure:"scope"`
	Search string   `mapstructure:"search"`
	Select []string `mapstructure:"select"`
	Hide   []string `mapstructure:"hide"`
	Quick  []string `mapstructure:"quick"`

	// --- Parent aliases from config file ---
	Aliases map[string]string `mapstructure:"aliases"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Selects = slices.Clone(c.Selects)
	clone.Hides = slices.Clone(c.Hides)
	clone.Quick = slices.Clone(c.Quick)
	if c.Aliases != nil {
		clone.Aliases = maps.Clone(c.Aliases)
	}
	return &clone
}

// HasExplicitSelection reports whether the user named any series to compare.
func (c *Config) HasExplicitSelection() bool {
	return len(c.Selects) > 0 || len(c.Quick) > 0
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processYearWindow(cfg, input); err != nil {
		return err
	}
	if err := processSelections(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the snapshot backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.SnapshotBackend))
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.SnapshotBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.SnapshotBackend]; !ok {
		return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	return ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect)
}

// validateSimpleInputs processes and validates all non-window, non-selection fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.DataSource = strings.TrimSpace(input.Data)
	if cfg.DataSource == "" {
		cfg.DataSource = DefaultDataSource
	}
	cfg.MeasureKey = strings.TrimSpace(input.Measure)
	cfg.Search = input.Search
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UseSuppliedParents = input.UseSuppliedParents
	cfg.Aliases = maps.Clone(input.Aliases)

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Timeout Validation ---
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.Timeout = timeout
	}

	// --- 3. Metric Validation ---
	metric, err := schema.ParseMetric(input.Metric)
	if err != nil {
		return err
	}
	cfg.Metric = metric

	// --- 4. Scope Validation ---
	cfg.Scope = schema.ContractScope
	if input.Scope != "" {
		scope, err := schema.ParseScope(input.Scope)
		if err != nil {
			return err
		}
		cfg.Scope = scope
	}

	// --- 5. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	return nil
}

// processYearWindow resolves the inclusive year range.
func processYearWindow(cfg *Config, input *ConfigRawInput) error {
	cfg.Window = schema.YearWindow{Min: DefaultYearMin, Max: DefaultYearMax}
	if input.YearMin != 0 {
		cfg.Window.Min = input.YearMin
	}
	if input.YearMax != 0 {
		cfg.Window.Max = input.YearMax
	}
	if cfg.Window.Min > cfg.Window.Max {
		return fmt.Errorf("year-min (%d) cannot be after year-max (%d)", cfg.Window.Min, cfg.Window.Max)
	}
	return nil
}

// processSelections parses --select, --hide and --quick values.
func processSelections(cfg *Config, input *ConfigRawInput) error {
	cfg.Selects = nil
	for _, raw := range splitList(input.Select) {
		ref, err := ParseSeriesRef(raw)
		if err != nil {
			return fmt.Errorf("invalid --select value: %w", err)
		}
		cfg.Selects = append(cfg.Selects, ref)
	}

	cfg.Hides = nil
	for _, raw := range splitList(input.Hide) {
		ref, err := ParseSeriesRef(raw)
		if err != nil {
			return fmt.Errorf("invalid --hide value: %w", err)
		}
		cfg.Hides = append(cfg.Hides, ref)
	}

	cfg.Quick = nil
	for _, q := range splitList(input.Quick) {
		cfg.Quick = append(cfg.Quick, strings.ToLower(q))
	}
	return nil
}

// ParseSeriesRef parses "scope:entity". Entities may themselves contain ':'.
// A bare "all_ma" or "market" selects the market series.
func ParseSeriesRef(s string) (SeriesRef, error) {
	s = strings.TrimSpace(s)
	scopeStr, key, found := strings.Cut(s, ":")
	if !found {
		if scope, err := schema.ParseScope(s); err == nil && scope == schema.MarketScope {
			return SeriesRef{Scope: schema.MarketScope, EntityKey: schema.MarketEntityKey}, nil
		}
		return SeriesRef{}, fmt.Errorf("expected scope:entity, got %q", s)
	}
	scope, err := schema.ParseScope(scopeStr)
	if err != nil {
		return SeriesRef{}, err
	}
	key = strings.TrimSpace(key)
	if scope == schema.MarketScope {
		key = schema.MarketEntityKey
	}
	if key == "" {
		return SeriesRef{}, fmt.Errorf("missing entity in %q", s)
	}
	return SeriesRef{Scope: scope, EntityKey: key}, nil
}

// splitList trims values and drops blanks.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
