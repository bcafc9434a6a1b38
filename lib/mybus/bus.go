package mybus

import "sync"

// Bus broadcasts values to every attached subscriber. Publishing never blocks:
// each subscriber has a one-slot buffer where the newest value wins, and when
// nobody is subscribed the last published value is parked in a one-slot
// overflow buffer and handed to the next subscriber.
type Bus[T any] struct {
	mutex       sync.Mutex
	subscribers map[int]chan T
	nextSubUID  int
	parked      *T
}

func New[T any]() *Bus[T] {
	return &Bus[T]{
		subscribers: map[int]chan T{},
	}
}

func (b *Bus[T]) Publish(value T) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(b.subscribers) == 0 {
		b.parked = &value
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- value:
		default:
			// Slot taken by an unconsumed value: newest wins
			select {
			case <-ch:
			default:
			}
			ch <- value
		}
	}
}

// Subscribe attaches a new consumer. A value parked while nobody was
// subscribed is delivered first. The returned func detaches the consumer and
// closes its channel; calling it again is a no-op.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ch := make(chan T, 1)
	uid := b.nextSubUID
	b.nextSubUID++
	b.subscribers[uid] = ch

	if b.parked != nil {
		ch <- *b.parked
		b.parked = nil
	}

	return ch, func() {
		b.mutex.Lock()
		defer b.mutex.Unlock()
		if _, attached := b.subscribers[uid]; !attached {
			return
		}
		delete(b.subscribers, uid)
		close(ch)
	}
}
