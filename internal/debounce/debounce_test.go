package debounce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFiresAfterDelay(t *testing.T) {
	d := New(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, d.Wait(context.Background(), "client"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 0, d.Pending())
}

func TestNewerCallSupersedesPending(t *testing.T) {
	d := New(50 * time.Millisecond)

	first := make(chan error, 1)
	go func() { first <- d.Wait(context.Background(), "client") }()

	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- d.Wait(context.Background(), "client") }()

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.NoError(t, <-second)
}

func TestKeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			errs[i] = d.Wait(context.Background(), key)
		}(i, key)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestWaitHonoursContext(t *testing.T) {
	d := New(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Wait(ctx, "client"), context.DeadlineExceeded)
	assert.Equal(t, 0, d.Pending())
}

func TestDoRunsOnlyTheLastCall(t *testing.T) {
	d := New(30 * time.Millisecond)

	var mu sync.Mutex
	var ran []int
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = d.Do(context.Background(), "client", func() error {
				mu.Lock()
				ran = append(ran, i)
				mu.Unlock()
				return nil
			})
		}(i)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []int{2}, ran)
}

func TestDefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultDelay, New(0).Delay())
}
