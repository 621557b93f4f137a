package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "tests"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultGroupBy is the grouping shown when nothing else is configured
	DefaultGroupBy = "category"
	// DefaultRegroupWindow is the quiet period before arrived results are regrouped
	DefaultRegroupWindow = 100 * time.Millisecond
	// DefaultDatabasePrefix is used for per-worker database names
	DefaultDatabasePrefix = "testing"
	// DefaultLogLevel is the diagnostic log level
	DefaultLogLevel = "info"
	// DefaultTUILogFile receives diagnostic logs while the terminal UI owns the screen
	DefaultTUILogFile = "gtr.log"
	// FileName is the optional project configuration file
	FileName = ".gtr.yaml"
	// EnvFileName is the project environment file
	EnvFileName = ".env"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"public",
	"storage",
	"bootstrap",
	"config",
	"database",
	"resources",
	"routes",
}
