package dynamiccomponents

import (
	"context"
	"time"

	"sync"

	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/mystate"
	"github.com/vioreel/viocommerce/lib/mytime"
)

// Manager drives each component through registered -> active -> inactive.
// Activation is time-gated (immediate for STREAM_START or no start time),
// deactivation is time- or duration-gated. Every scheduled step is a
// cancellable task keyed by component id, so a manual deactivate or a reset
// wins over a timer that is about to fire: the fired timer hits the
// "already in target state" guard and becomes a no-op.
type Manager struct {
	mutex      sync.Mutex
	logger     mylog.Logger
	nower      mytime.Nower
	scheduler  mytime.Scheduler
	registered map[string]Component
	jobs       map[string]mytime.Cancel
	active     *mystate.Holder[[]Component]
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewManager(nower mytime.Nower, scheduler mytime.Scheduler) *Manager {
	return &Manager{
		logger:     mylog.New("dynamiccomponents"),
		nower:      nower,
		scheduler:  scheduler,
		registered: map[string]Component{},
		jobs:       map[string]mytime.Cancel{},
		active:     mystate.NewHolder([]Component{}),
	}
}

// Register adds a component and immediately evaluates its activation policy.
func (m *Manager) Register(c context.Context, component Component) {
	now := m.nower.Now()

	m.mutex.Lock()
	m.registered[component.ID] = component

	switch {
	case component.StartTime != nil && component.StartTime.After(now):
		delay := component.StartTime.Sub(now)
		m.logger.Log(c, component.ID, mylog.SeverityDebug, "Component %s activates in %s", component.ID, delay)
		m.scheduleLocked(component.ID, delay, func() {
			m.Activate(c, component.ID)
		})
		m.mutex.Unlock()
	case component.TriggerOn == TriggerStreamStart || component.StartTime == nil:
		m.mutex.Unlock()
		m.Activate(c, component.ID)
	default:
		// Start time has passed and trigger is manual: wait for Activate
		m.mutex.Unlock()
	}
}

// Activate moves a registered component into the active set and schedules
// its deactivation. No-op when unregistered or already active.
func (m *Manager) Activate(c context.Context, componentUID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	component, registered := m.registered[componentUID]
	if !registered || m.isActiveLocked(componentUID) {
		return
	}

	m.cancelJobLocked(componentUID)

	m.active.Update(func(active []Component) []Component {
		next := make([]Component, 0, len(active)+1)
		next = append(next, active...)
		return append(next, component)
	})
	m.logger.Log(c, componentUID, mylog.SeverityInfo, "Component %s active", componentUID)

	now := m.nower.Now()
	switch {
	case component.EndTime != nil && component.EndTime.After(now):
		m.scheduleLocked(componentUID, component.EndTime.Sub(now), func() {
			m.Deactivate(c, componentUID)
		})
	case component.Type == TypeBanner && component.Data.DurationMillis > 0:
		m.scheduleLocked(componentUID, time.Duration(component.Data.DurationMillis)*time.Millisecond, func() {
			m.Deactivate(c, componentUID)
		})
	}
}

// Deactivate removes a component from the active set and cancels any pending
// scheduled step for it. No-op when not active.
func (m *Manager) Deactivate(c context.Context, componentUID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cancelJobLocked(componentUID)

	if !m.isActiveLocked(componentUID) {
		return
	}

	m.active.Update(func(active []Component) []Component {
		next := make([]Component, 0, len(active))
		for _, component := range active {
			if component.ID != componentUID {
				next = append(next, component)
			}
		}
		return next
	})
	m.logger.Log(c, componentUID, mylog.SeverityInfo, "Component %s inactive", componentUID)
}

// Reset cancels all pending tasks and clears both registered and active
// state. Called on stream teardown.
func (m *Manager) Reset(c context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for componentUID, cancel := range m.jobs {
		cancel()
		delete(m.jobs, componentUID)
	}
	m.registered = map[string]Component{}
	m.active.Update(func([]Component) []Component {
		return []Component{}
	})
}

func (m *Manager) ActiveComponents() []Component {
	return m.active.Get()
}

// SubscribeActive observes the active set; the observer always receives a
// complete snapshot.
func (m *Manager) SubscribeActive(observer func([]Component)) func() {
	return m.active.Subscribe(observer)
}

func (m *Manager) isActiveLocked(componentUID string) bool {
	for _, component := range m.active.Get() {
		if component.ID == componentUID {
			return true
		}
	}
	return false
}

// scheduleLocked replaces any pending task for the id so a stale timer can
// never fire alongside a fresh one.
func (m *Manager) scheduleLocked(componentUID string, delay time.Duration, task func()) {
	m.cancelJobLocked(componentUID)
	m.jobs[componentUID] = m.scheduler.Schedule(delay, task)
}

func (m *Manager) cancelJobLocked(componentUID string) {
	if cancel, exists := m.jobs[componentUID]; exists {
		cancel()
		delete(m.jobs, componentUID)
	}
}
