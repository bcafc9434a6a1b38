package mytime

import (
	"sort"
	"sync"
	"time"
)

// FakeScheduler records scheduled tasks and fires them when the fake clock is
// advanced. Tasks fire in deadline order, synchronously on the advancing
// goroutine, so tests observe a deterministic interleaving.
type FakeScheduler struct {
	mutex   sync.Mutex
	elapsed time.Duration
	tasks   []*fakeTask
}

type fakeTask struct {
	deadline  time.Duration
	run       func()
	cancelled bool
	fired     bool
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (s *FakeScheduler) Schedule(d time.Duration, task func()) Cancel {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ft := &fakeTask{
		deadline: s.elapsed + d,
		run:      task,
	}
	s.tasks = append(s.tasks, ft)

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		ft.cancelled = true
	}
}

// Advance moves the fake clock forward and fires every pending task whose
// deadline has been reached.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mutex.Lock()
	s.elapsed += d
	due := []*fakeTask{}
	for _, ft := range s.tasks {
		if !ft.fired && !ft.cancelled && ft.deadline <= s.elapsed {
			ft.fired = true
			due = append(due, ft)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline < due[j].deadline
	})
	s.mutex.Unlock()

	for _, ft := range due {
		ft.run()
	}
}

// PendingCount reports how many tasks are scheduled but not yet fired or cancelled.
func (s *FakeScheduler) PendingCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	count := 0
	for _, ft := range s.tasks {
		if !ft.fired && !ft.cancelled {
			count++
		}
	}
	return count
}
