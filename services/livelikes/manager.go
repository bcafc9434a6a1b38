// Package livelikes maintains the bounded, self-expiring set of "flying
// heart" events shown over a live stream, plus the running like counter.
package livelikes

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/myrand"
	"github.com/vioreel/viocommerce/lib/mystate"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/lib/myuuid"
)

const (
	heartLifetime    = 3000 * time.Millisecond
	maxVisibleHearts = 20
	burstSpawnDelay  = 150 * time.Millisecond
	burstMaxCount    = 2
)

// FlyingHeart is one ephemeral like animation event.
type FlyingHeart struct {
	UID           string
	StartX        float64
	StartY        float64
	UserGenerated bool
	Timestamp     time.Time
}

// Manager appends hearts, expires each one after its fixed lifetime and keeps
// the visible set truncated to the most recent entries. Removal is idempotent,
// so the expiry timer of a heart that was already truncated away fires
// harmlessly.
type Manager struct {
	mutex      sync.Mutex
	logger     mylog.Logger
	nower      mytime.Nower
	scheduler  mytime.Scheduler
	uuider     myuuid.UUIDer
	rander     myrand.Rander
	jobs       map[int64]mytime.Cancel
	nextJobUID int64
	totalLikes atomic.Int64
	hearts     *mystate.Holder[[]FlyingHeart]
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewManager(nower mytime.Nower, scheduler mytime.Scheduler, uuider myuuid.UUIDer, rander myrand.Rander) *Manager {
	return &Manager{
		logger:    mylog.New("livelikes"),
		nower:     nower,
		scheduler: scheduler,
		uuider:    uuider,
		rander:    rander,
		jobs:      map[int64]mytime.Cancel{},
		hearts:    mystate.NewHolder([]FlyingHeart{}),
	}
}

// CreateUserLike appends a heart at the tap position, marked user-generated.
func (m *Manager) CreateUserLike(c context.Context, x float64, y float64) {
	m.appendHeart(c, x, y, true)
}

// RegisterRemoteLike appends a heart for a like made by another viewer.
func (m *Manager) RegisterRemoteLike(c context.Context, x float64, y float64) {
	m.appendHeart(c, x, y, false)
}

// HandleRemoteHeartEvent spawns a staggered burst of 1 or 2 hearts at random
// positions for one remote heart signal.
func (m *Manager) HandleRemoteHeartEvent(c context.Context) {
	count := 1 + m.rander.Intn(burstMaxCount)
	m.logger.Log(c, "", mylog.SeverityDebug, "Spawning burst of %d hearts", count)

	for index := 0; index < count; index++ {
		x := m.rander.Float64()
		y := m.rander.Float64()
		if index == 0 {
			m.RegisterRemoteLike(c, x, y)
			continue
		}
		m.scheduleJob(time.Duration(index)*burstSpawnDelay, func() {
			m.RegisterRemoteLike(c, x, y)
		})
	}
}

func (m *Manager) appendHeart(c context.Context, x float64, y float64, userGenerated bool) {
	heart := FlyingHeart{
		UID:           m.uuider.Create(),
		StartX:        x,
		StartY:        y,
		UserGenerated: userGenerated,
		Timestamp:     m.nower.Now(),
	}

	m.totalLikes.Add(1)

	m.hearts.Update(func(hearts []FlyingHeart) []FlyingHeart {
		next := make([]FlyingHeart, 0, len(hearts)+1)
		next = append(next, hearts...)
		next = append(next, heart)
		if len(next) > maxVisibleHearts {
			next = next[len(next)-maxVisibleHearts:]
		}
		return next
	})

	m.scheduleJob(heartLifetime, func() {
		m.removeHeart(heart.UID)
	})
}

func (m *Manager) removeHeart(heartUID string) {
	m.hearts.Update(func(hearts []FlyingHeart) []FlyingHeart {
		next := make([]FlyingHeart, 0, len(hearts))
		for _, heart := range hearts {
			if heart.UID != heartUID {
				next = append(next, heart)
			}
		}
		return next
	})
}

// Reset cancels every pending expiry and burst task and clears the visible
// set. The total counter is deliberately left alone: it spans the session.
func (m *Manager) Reset(c context.Context) {
	m.mutex.Lock()
	for jobUID, cancel := range m.jobs {
		cancel()
		delete(m.jobs, jobUID)
	}
	m.mutex.Unlock()

	m.hearts.Update(func([]FlyingHeart) []FlyingHeart {
		return []FlyingHeart{}
	})
}

func (m *Manager) Hearts() []FlyingHeart {
	return m.hearts.Get()
}

func (m *Manager) TotalLikes() int64 {
	return m.totalLikes.Load()
}

// SubscribeHearts observes the visible set; the observer always receives a
// complete snapshot.
func (m *Manager) SubscribeHearts(observer func([]FlyingHeart)) func() {
	return m.hearts.Subscribe(observer)
}

// scheduleJob tracks the cancel handle so Reset can tear down every
// outstanding task. A finished task removes its own handle.
func (m *Manager) scheduleJob(delay time.Duration, task func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextJobUID++
	jobUID := m.nextJobUID

	cancel := m.scheduler.Schedule(delay, func() {
		task()
		m.forgetJob(jobUID)
	})
	m.jobs[jobUID] = cancel
}

func (m *Manager) forgetJob(jobUID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.jobs, jobUID)
}
