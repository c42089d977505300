package clock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestMock_AdvanceAndSet(t *testing.T) {
	start := time.Unix(60, 0).UTC()
	m := clock.NewMock(start)

	assert.Equal(t, start, m.Now())

	got := m.Advance(90 * time.Second)
	assert.Equal(t, time.Unix(150, 0).UTC(), got)
	assert.Equal(t, got, m.Now())

	m.Set(time.Date(2024, 10, 24, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 10, 24, 12, 0, 0, 0, time.UTC), m.Now())
}

func TestMock_ConcurrentAdvance(t *testing.T) {
	m := clock.NewMock(time.Unix(0, 0))

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			m.Advance(time.Second)
		}()
	}

	wg.Wait()

	assert.Equal(t, time.Unix(100, 0).UTC(), m.Now())
}

func TestReal_IsUTC(t *testing.T) {
	now := clock.NewReal().Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
