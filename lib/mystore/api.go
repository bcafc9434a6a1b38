package mystore

import (
	"context"
)

type ctxTransactionKey struct{}

// Store holds per-checkout provider context for the lifetime of the process.
// The SDK core keeps no state beyond the session, so the only backend is the
// in-memory one.
type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	List(c context.Context) ([]T, error)
	Remove(c context.Context, uid string) error
}

func New[T any](c context.Context) (Store[T], func(), error) {
	return NewInMemoryStore[T](c)
}
