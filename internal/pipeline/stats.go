package pipeline

import "time"

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	RunID       string
	Total       int
	Current     int
	Processed   int
	Skipped     int
	Failed      int
	Tracks      int // Subtitle tracks restyled.
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration

	// Failures lists the inputs that failed, in processing order.
	Failures []string
	// Interrupted is set when the context was cancelled mid-batch.
	Interrupted bool
}

// OK reports whether every attempted file succeeded or was skipped.
func (s *RunStats) OK() bool {
	return s.Failed == 0 && !s.Interrupted
}
