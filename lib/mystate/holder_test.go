package mystate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type overlayState struct {
	Visible bool
	Count   int
}

func TestHolder(t *testing.T) {
	t.Run("Update replaces whole snapshot", func(t *testing.T) {
		holder := NewHolder(overlayState{})

		holder.Update(func(s overlayState) overlayState {
			s.Visible = true
			s.Count = 3
			return s
		})

		assert.Equal(t, overlayState{Visible: true, Count: 3}, holder.Get())
	})

	t.Run("Subscriber sees current snapshot immediately and every update after", func(t *testing.T) {
		holder := NewHolder(overlayState{Count: 1})

		observed := []overlayState{}
		unsubscribe := holder.Subscribe(func(s overlayState) {
			observed = append(observed, s)
		})

		holder.Update(func(s overlayState) overlayState {
			s.Count = 2
			return s
		})
		unsubscribe()
		holder.Update(func(s overlayState) overlayState {
			s.Count = 3
			return s
		})

		assert.Equal(t, []overlayState{{Count: 1}, {Count: 2}}, observed)
	})

	t.Run("TryUpdate acts as test-and-set guard", func(t *testing.T) {
		holder := NewHolder(overlayState{})

		begin := func() bool {
			return holder.TryUpdate(func(s overlayState) (overlayState, bool) {
				if s.Visible {
					return s, false
				}
				s.Visible = true
				return s, true
			})
		}

		assert.True(t, begin())
		assert.False(t, begin())
	})
}
