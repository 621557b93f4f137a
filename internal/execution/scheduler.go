package execution

// Scheduler distributes jobs across workers
type Scheduler interface {
	Schedule(jobs []FileJob, workerCount int) [][]FileJob
}

// RoundRobinScheduler distributes jobs evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule assigns job i to worker i mod workerCount, so a file always runs
// against the same worker database for the same job list.
func (s *RoundRobinScheduler) Schedule(jobs []FileJob, workerCount int) [][]FileJob {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(jobs) && len(jobs) > 0 {
		workerCount = len(jobs)
	}

	distribution := make([][]FileJob, workerCount)
	for i, job := range jobs {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], job)
	}
	return distribution
}
