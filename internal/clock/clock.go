package clock

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current instant. Every component that reads time takes a
// Clock so that tests can move time forward without sleeping.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func NewReal() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Mock is a settable clock. It is safe for concurrent use.
type Mock struct {
	nanos atomic.Int64
}

func NewMock(start time.Time) *Mock {
	m := &Mock{}
	m.nanos.Store(start.UnixNano())

	return m
}

func (m *Mock) Now() time.Time {
	return time.Unix(0, m.nanos.Load()).UTC()
}

func (m *Mock) Set(t time.Time) {
	m.nanos.Store(t.UnixNano())
}

// Advance moves the clock forward by d and returns the new time.
func (m *Mock) Advance(d time.Duration) time.Time {
	return time.Unix(0, m.nanos.Add(int64(d))).UTC()
}
