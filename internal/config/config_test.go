package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gtr/internal/grouping"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "configured test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "tests",
			},
			expected: "/project/tests",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "tests/Unit",
				},
			},
			expected: "/project/tests/Unit",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		workerID int
		expected string
	}{
		{name: "default prefix", prefix: DefaultDatabasePrefix, workerID: 1, expected: "testing_1"},
		{name: "custom prefix", prefix: "shop_testing", workerID: 3, expected: "shop_testing_3"},
		{name: "empty prefix falls back", prefix: "", workerID: 2, expected: "testing_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DatabasePrefix: tt.prefix}
			if name := cfg.GetDatabaseName(tt.workerID); name != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, name)
			}
		})
	}
}

func TestConfig_GetPHPUnitPath(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		expected string
	}{
		{name: "vendor binary", expected: "/project/vendor/bin/phpunit"},
		{name: "binary on PATH", binary: "phpunit", expected: "phpunit"},
		{name: "relative binary", binary: "tools/phpunit", expected: "/project/tools/phpunit"},
		{name: "absolute binary", binary: "/usr/bin/phpunit", expected: "/usr/bin/phpunit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ProjectPath: "/project", PHPUnitBinary: tt.binary}
			if got := cfg.GetPHPUnitPath(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}
	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}
	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
	if cfg.RegroupWindow != 100*time.Millisecond {
		t.Errorf("expected regroup window 100ms, got %s", cfg.RegroupWindow)
	}
	if !cfg.IncludeAncestorCategories {
		t.Error("ancestor categories should be included by default")
	}
	if s, err := cfg.Strategy(); err != nil || s != grouping.ByCategory {
		t.Errorf("expected category strategy, got %v (%v)", s, err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GTR_PROCESSORS", "GTR_GROUP_BY", "GTR_REGROUP_WINDOW_MS", "DB_DATABASE_PREFIX"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_Layering(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
group_by: outcome
processors: 2
regroup_window_ms: 250
exclude_groups: [slow]
ignore: [legacy]
log:
  file: storage/logs/gtr.log
  level: debug
`)
	writeFile(t, filepath.Join(dir, EnvFileName), "GTR_PROCESSORS=6\nDB_DATABASE_PREFIX=shop\n")

	cfg, err := Load(Flags{ProjectPath: dir, GroupBy: "duration"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"flag wins over file", cfg.GroupBy, "duration"},
		{"env wins over file", cfg.Processors, 6},
		{"file window", cfg.RegroupWindow, 250 * time.Millisecond},
		{"file exclude groups", len(cfg.ExcludeGroups), 1},
		{"ignore appended", len(cfg.PathsToIgnore), len(DefaultPathsToIgnore) + 1},
		{"log level", cfg.LogLevel, "debug"},
		{"log path", cfg.GetLogPath(false), filepath.Join(dir, "storage/logs/gtr.log")},
		{"log path with tui", cfg.GetLogPath(true), filepath.Join(dir, "storage/logs/gtr.log")},
		{"database name", cfg.GetDatabaseName(1), "shop_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestGetLogPath_Defaults(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/app"

	if got := cfg.GetLogPath(false); got != "" {
		t.Errorf("expected stderr logging, got %q", got)
	}
	if got := cfg.GetLogPath(true); got != filepath.Join("/app", DefaultOutputJSONDir, DefaultTUILogFile) {
		t.Errorf("unexpected tui log path %q", got)
	}
}

func TestLoad_MissingFilesUseDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Flags{ProjectPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GroupBy != DefaultGroupBy {
		t.Errorf("expected %s, got %s", DefaultGroupBy, cfg.GroupBy)
	}
	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected %d, got %d", DefaultProcessors, cfg.Processors)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   string
		flags Flags
	}{
		{name: "unknown strategy flag", flags: Flags{GroupBy: "alphabet"}},
		{name: "unknown strategy in file", yaml: "group_by: alphabet\n"},
		{name: "zero processors in file", yaml: "processors: 0\n"},
		{name: "malformed yaml", yaml: "group_by: [\n"},
		{name: "bad env number", env: "GTR_PROCESSORS=many\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.yaml != "" {
				writeFile(t, filepath.Join(dir, FileName), tt.yaml)
			}
			if tt.env != "" {
				writeFile(t, filepath.Join(dir, EnvFileName), tt.env)
			}
			tt.flags.ProjectPath = dir
			if _, err := Load(tt.flags); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfig_NoAncestorCategoriesFlag(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{NoAncestorCategories: true})
	if cfg.IncludeAncestorCategories {
		t.Error("flag should disable ancestor categories")
	}
}
