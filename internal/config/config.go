package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gtr/internal/grouping"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors    int
	PHPUnitBinary string
	FailFast      bool
	ExcludeGroups []string

	// Grouping settings
	GroupBy                   string
	IncludeAncestorCategories bool
	RegroupWindow             time.Duration

	// Per-worker databases
	DatabasePrefix string

	// Diagnostics
	LogFile  string
	LogLevel string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags. Zero values leave the configured value alone.
type Flags struct {
	ProjectPath          string
	ConfigFile           string
	Processors           int
	Migrate              bool
	NoFresh              bool
	TestPath             string
	NameFilter           string
	TestCases            bool
	FailFast             bool
	GroupBy              string
	NoAncestorCategories bool
	ExcludeGroups        []string
	NoTUI                bool
	LogFile              string
	LogLevel             string
}

// fileConfig mirrors the keys accepted in .gtr.yaml
type fileConfig struct {
	TestPath                  *string  `yaml:"test_path"`
	Processors                *int     `yaml:"processors"`
	PHPUnit                   *string  `yaml:"phpunit"`
	FailFast                  *bool    `yaml:"fail_fast"`
	ExcludeGroups             []string `yaml:"exclude_groups"`
	GroupBy                   *string  `yaml:"group_by"`
	IncludeAncestorCategories *bool    `yaml:"include_ancestor_categories"`
	RegroupWindowMS           *int     `yaml:"regroup_window_ms"`
	Ignore                    []string `yaml:"ignore"`
	Output                    *struct {
		Dir  string `yaml:"dir"`
		File string `yaml:"file"`
	} `yaml:"output"`
	Log *struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:               DefaultProjectPath,
		TestPath:                  DefaultTestPath,
		OutputJSONFile:            DefaultOutputJSONFile,
		OutputJSONDir:             DefaultOutputJSONDir,
		Processors:                DefaultProcessors,
		GroupBy:                   DefaultGroupBy,
		IncludeAncestorCategories: true,
		RegroupWindow:             DefaultRegroupWindow,
		DatabasePrefix:            DefaultDatabasePrefix,
		LogLevel:                  DefaultLogLevel,
		Flags:                     Flags{Processors: DefaultProcessors},
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load layers defaults, the project config file, the project .env file and
// the flags, in that order, and validates the result.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(cfg.ProjectPath, FileName)
	}
	if err := cfg.LoadFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(filepath.Join(cfg.ProjectPath, EnvFileName)); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile applies a YAML config file. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.TestPath != nil {
		c.TestPath = *fc.TestPath
	}
	if fc.Processors != nil {
		c.Processors = *fc.Processors
	}
	if fc.PHPUnit != nil {
		c.PHPUnitBinary = *fc.PHPUnit
	}
	if fc.FailFast != nil {
		c.FailFast = *fc.FailFast
	}
	if len(fc.ExcludeGroups) > 0 {
		c.ExcludeGroups = fc.ExcludeGroups
	}
	if fc.GroupBy != nil {
		c.GroupBy = *fc.GroupBy
	}
	if fc.IncludeAncestorCategories != nil {
		c.IncludeAncestorCategories = *fc.IncludeAncestorCategories
	}
	if fc.RegroupWindowMS != nil {
		c.RegroupWindow = time.Duration(*fc.RegroupWindowMS) * time.Millisecond
	}
	if len(fc.Ignore) > 0 {
		c.PathsToIgnore = append(c.PathsToIgnore, fc.Ignore...)
	}
	if fc.Output != nil {
		if fc.Output.Dir != "" {
			c.OutputJSONDir = fc.Output.Dir
		}
		if fc.Output.File != "" {
			c.OutputJSONFile = fc.Output.File
		}
	}
	if fc.Log != nil {
		if fc.Log.File != "" {
			c.LogFile = fc.Log.File
		}
		if fc.Log.Level != "" {
			c.LogLevel = fc.Log.Level
		}
	}
	return nil
}

// LoadEnv applies GTR_* and DB_DATABASE_PREFIX from a .env file, falling
// back to the process environment. A missing file is not an error.
func (c *Config) LoadEnv(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	}

	if v := lookup("GTR_PROCESSORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GTR_PROCESSORS %q: %w", v, err)
		}
		c.Processors = n
	}
	if v := lookup("GTR_GROUP_BY"); v != "" {
		c.GroupBy = v
	}
	if v := lookup("GTR_REGROUP_WINDOW_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GTR_REGROUP_WINDOW_MS %q: %w", v, err)
		}
		c.RegroupWindow = time.Duration(ms) * time.Millisecond
	}
	if v := lookup("DB_DATABASE_PREFIX"); v != "" {
		c.DatabasePrefix = v
	}
	return nil
}

// ApplyFlags overrides configured values with the flags that were set
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.FailFast {
		c.FailFast = true
	}
	if flags.GroupBy != "" {
		c.GroupBy = flags.GroupBy
	}
	if flags.NoAncestorCategories {
		c.IncludeAncestorCategories = false
	}
	if len(flags.ExcludeGroups) > 0 {
		c.ExcludeGroups = flags.ExcludeGroups
	}
	if flags.LogFile != "" {
		c.LogFile = flags.LogFile
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// Validate reports settings that cannot be used
func (c *Config) Validate() error {
	if c.Processors <= 0 {
		return fmt.Errorf("processors must be positive, got %d", c.Processors)
	}
	if c.RegroupWindow < 0 {
		return fmt.Errorf("regroup window must not be negative, got %s", c.RegroupWindow)
	}
	if _, err := c.Strategy(); err != nil {
		return err
	}
	return nil
}

// Strategy returns the configured grouping strategy
func (c *Config) Strategy() (grouping.Strategy, error) {
	return grouping.ParseStrategy(c.GroupBy)
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}
	if filepath.IsAbs(c.TestPath) {
		return c.TestPath
	}
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the absolute path of the results file so run and
// view always agree regardless of the working directory.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetLogPath returns the log file path, or "" for stderr. Logs go to the
// output directory when the terminal UI is active and no file is set.
func (c *Config) GetLogPath(tui bool) string {
	if c.LogFile == "" && tui {
		return filepath.Join(c.ProjectPath, c.OutputJSONDir, DefaultTUILogFile)
	}
	if c.LogFile == "" || filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.ProjectPath, c.LogFile)
}

// GetPHPUnitPath returns the path to PHPUnit binary
func (c *Config) GetPHPUnitPath() string {
	if c.PHPUnitBinary != "" {
		if filepath.IsAbs(c.PHPUnitBinary) || !strings.ContainsRune(c.PHPUnitBinary, filepath.Separator) {
			return c.PHPUnitBinary
		}
		return filepath.Join(c.ProjectPath, c.PHPUnitBinary)
	}
	return filepath.Join(c.ProjectPath, "vendor", "bin", "phpunit")
}

// GetDatabaseName returns the database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	prefix := c.DatabasePrefix
	if prefix == "" {
		prefix = DefaultDatabasePrefix
	}
	return fmt.Sprintf("%s_%d", prefix, workerID)
}
