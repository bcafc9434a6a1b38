package dynamiccomponents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/vioreel/viocommerce/lib/mytime"
)

func TestManagerScheduling(t *testing.T) {
	c := context.TODO()

	t.Run("Future start time activates after the delay", func(t *testing.T) {
		manager, scheduler := setupManager(t)

		startTime := mytime.ExampleTime.Add(500 * time.Millisecond)
		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, StartTime: &startTime})

		assert.Empty(t, manager.ActiveComponents())

		scheduler.Advance(600 * time.Millisecond)

		assert.Len(t, manager.ActiveComponents(), 1)
		assert.Equal(t, "comp-1", manager.ActiveComponents()[0].ID)
	})

	t.Run("No start time activates immediately", func(t *testing.T) {
		manager, _ := setupManager(t)

		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner})

		assert.Len(t, manager.ActiveComponents(), 1)
	})

	t.Run("Stream-start trigger with elapsed start time activates immediately", func(t *testing.T) {
		manager, _ := setupManager(t)

		startTime := mytime.ExampleTime.Add(-time.Minute)
		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, StartTime: &startTime, TriggerOn: TriggerStreamStart})

		assert.Len(t, manager.ActiveComponents(), 1)
	})

	t.Run("Elapsed start time without trigger waits for manual activation", func(t *testing.T) {
		manager, _ := setupManager(t)

		startTime := mytime.ExampleTime.Add(-time.Minute)
		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, StartTime: &startTime})

		assert.Empty(t, manager.ActiveComponents())

		manager.Activate(c, "comp-1")

		assert.Len(t, manager.ActiveComponents(), 1)
	})

	t.Run("Banner with duration deactivates after the duration", func(t *testing.T) {
		manager, scheduler := setupManager(t)

		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, Data: ComponentData{DurationMillis: 2000}})
		assert.Len(t, manager.ActiveComponents(), 1)

		scheduler.Advance(2100 * time.Millisecond)

		assert.Empty(t, manager.ActiveComponents())
	})

	t.Run("End time wins over duration", func(t *testing.T) {
		manager, scheduler := setupManager(t)

		endTime := mytime.ExampleTime.Add(time.Second)
		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, EndTime: &endTime, Data: ComponentData{DurationMillis: 60000}})

		scheduler.Advance(1100 * time.Millisecond)

		assert.Empty(t, manager.ActiveComponents())
	})

	t.Run("Activate is a no-op when already active or unregistered", func(t *testing.T) {
		manager, _ := setupManager(t)

		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner})
		manager.Activate(c, "comp-1")
		manager.Activate(c, "ghost")

		assert.Len(t, manager.ActiveComponents(), 1)
	})

	t.Run("Manual deactivate cancels the pending timer", func(t *testing.T) {
		manager, scheduler := setupManager(t)

		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, Data: ComponentData{DurationMillis: 2000}})
		manager.Deactivate(c, "comp-1")

		assert.Empty(t, manager.ActiveComponents())
		assert.Equal(t, 0, scheduler.PendingCount())

		// The stale timer window: re-activation is unaffected
		manager.Activate(c, "comp-1")
		assert.Len(t, manager.ActiveComponents(), 1)
	})

	t.Run("Reset cancels everything", func(t *testing.T) {
		manager, scheduler := setupManager(t)

		startTime := mytime.ExampleTime.Add(time.Hour)
		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner, StartTime: &startTime})
		manager.Register(c, Component{ID: "comp-2", Type: TypeBanner, Data: ComponentData{DurationMillis: 1000}})

		manager.Reset(c)

		assert.Empty(t, manager.ActiveComponents())
		assert.Equal(t, 0, scheduler.PendingCount())

		scheduler.Advance(2 * time.Hour)
		assert.Empty(t, manager.ActiveComponents())
	})

	t.Run("Subscriber observes activation and deactivation", func(t *testing.T) {
		manager, _ := setupManager(t)

		snapshots := [][]Component{}
		unsubscribe := manager.SubscribeActive(func(active []Component) {
			snapshots = append(snapshots, active)
		})
		defer unsubscribe()

		manager.Register(c, Component{ID: "comp-1", Type: TypeBanner})
		manager.Deactivate(c, "comp-1")

		assert.Len(t, snapshots, 3)
		assert.Empty(t, snapshots[0])
		assert.Len(t, snapshots[1], 1)
		assert.Empty(t, snapshots[2])
	})
}

func setupManager(t *testing.T) (*Manager, *mytime.FakeScheduler) {
	ctrl := gomock.NewController(t)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	scheduler := mytime.NewFakeScheduler()

	return NewManager(nower, scheduler), scheduler
}
