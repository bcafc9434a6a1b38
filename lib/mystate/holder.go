package mystate

import "sync"

// Holder is a single observable state cell. The state is replaced as a whole,
// never mutated in place, so an observer always sees a fully-formed snapshot.
type Holder[T any] struct {
	mutex       sync.Mutex
	current     T
	subscribers map[int]func(T)
	nextSubUID  int
}

func NewHolder[T any](initial T) *Holder[T] {
	return &Holder[T]{
		current:     initial,
		subscribers: map[int]func(T){},
	}
}

func (h *Holder[T]) Get() T {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.current
}

// Update atomically replaces the current snapshot with the result of modify
// and notifies every subscriber with the new snapshot.
func (h *Holder[T]) Update(modify func(T) T) T {
	h.mutex.Lock()
	h.current = modify(h.current)
	snapshot := h.current
	subscribers := make([]func(T), 0, len(h.subscribers))
	for _, subscriber := range h.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	h.mutex.Unlock()

	// Notify outside the lock so a subscriber can call back into the holder
	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}

	return snapshot
}

// TryUpdate replaces the snapshot only when modify reports ok. Used for
// guard flags that must be tested and set in one step.
func (h *Holder[T]) TryUpdate(modify func(T) (T, bool)) bool {
	h.mutex.Lock()
	next, ok := modify(h.current)
	if !ok {
		h.mutex.Unlock()
		return false
	}
	h.current = next
	snapshot := h.current
	subscribers := make([]func(T), 0, len(h.subscribers))
	for _, subscriber := range h.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	h.mutex.Unlock()

	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}

	return true
}

// Subscribe registers an observer that is immediately called with the current
// snapshot and afterwards with every new one. The returned func unsubscribes.
func (h *Holder[T]) Subscribe(observer func(T)) func() {
	h.mutex.Lock()
	uid := h.nextSubUID
	h.nextSubUID++
	h.subscribers[uid] = observer
	snapshot := h.current
	h.mutex.Unlock()

	observer(snapshot)

	return func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		delete(h.subscribers, uid)
	}
}
