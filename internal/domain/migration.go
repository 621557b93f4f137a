package domain

// MigrationResult represents the result of preparing one worker database
type MigrationResult struct {
	WorkerID int
	Database string
	Success  bool
	Output   string
	Error    error
}
