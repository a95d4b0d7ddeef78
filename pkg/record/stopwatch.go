package record

import "time"

// Stopwatch measures elapsed wall time for a run using the monotonic clock,
// so a system clock adjustment mid-run cannot produce a negative duration.
type Stopwatch struct {
	start time.Time
}

// NewStopwatch starts timing immediately.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

// Elapsed returns the time since the stopwatch started.
func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// ElapsedMS returns whole milliseconds since the stopwatch started.
func (s *Stopwatch) ElapsedMS() int64 {
	return s.Elapsed().Milliseconds()
}
