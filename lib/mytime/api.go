package mytime

import "time"

var (
	ExampleTime time.Time
)

func init() {
	ExampleTime, _ = time.Parse("2006-01-02T15:04:05Z", "2023-02-27T23:58:59Z")
}

//go:generate mockgen -source=api.go -package mytime -destination nower_mock.go Nower
type Nower interface {
	Now() time.Time
}

type RealNower struct{}

func (n RealNower) Now() time.Time {
	return time.Now()
}

// Cancel stops a scheduled task. Calling it after the task has fired is a no-op.
type Cancel func()

// Scheduler runs a task once after a delay. The returned Cancel must be safe
// to call concurrently with the task firing: either the task runs or the
// cancel wins, never both halves of the task.
type Scheduler interface {
	Schedule(d time.Duration, task func()) Cancel
}
