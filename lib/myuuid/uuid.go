package myuuid

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

type UUIDer interface {
	Create() string
}

type RealUUIDer struct{}

func (u RealUUIDer) Create() string {
	return uuid.New().String()
}

// SequentialUUIDer hands out predictable uids for use in tests.
type SequentialUUIDer struct {
	counter atomic.Int64
}

func (u *SequentialUUIDer) Create() string {
	return fmt.Sprintf("uid-%d", u.counter.Add(1))
}
