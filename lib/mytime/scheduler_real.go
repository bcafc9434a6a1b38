package mytime

import "time"

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (s realScheduler) Schedule(d time.Duration, task func()) Cancel {
	timer := time.AfterFunc(d, task)
	return func() {
		timer.Stop()
	}
}
