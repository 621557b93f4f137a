package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"gtr/internal/domain"
)

// Save writes the results of a run to the configured JSON output file and
// returns what was written.
func (s *JSONStorage) Save(runs []domain.FileRun, failures []domain.TestFailure, duration time.Duration, workers int, cancelled bool) (*domain.TestResultsOutput, error) {
	var (
		passedFiles int
		failedFiles int
		failedCases int
		results     []domain.TestResult
	)
	for _, run := range runs {
		if run.Success {
			passedFiles++
		} else {
			failedFiles++
		}
		for _, c := range run.Cases {
			if c.Status == domain.StatusFailed {
				failedCases++
			}
			results = append(results, c)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	output := &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			RunID:           uuid.NewString(),
			TotalTestFiles:  len(runs),
			FailedTestFiles: failedFiles,
			PassedTestFiles: passedFiles,
			TotalTestCases:  len(results),
			FailedTestCases: failedCases,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Workers:         workers,
			Cancelled:       cancelled,
			Timestamp:       s.now().Format(time.RFC3339),
		},
		Results: results,
		Details: failures,
	}

	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last test results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file. The file is
// replaced atomically so a viewer never reads a partial run.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".results-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
