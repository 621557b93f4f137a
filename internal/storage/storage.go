package storage

import (
	"errors"
	"time"

	"gtr/internal/config"
	"gtr/internal/domain"
)

// ErrNoResults is returned by Load when no run has been stored yet
var ErrNoResults = errors.New("no stored test results")

// Storage persists and loads test run results for the view command.
type Storage interface {
	Save(runs []domain.FileRun, failures []domain.TestFailure, duration time.Duration, workers int, cancelled bool) (*domain.TestResultsOutput, error)
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output as is.
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}
