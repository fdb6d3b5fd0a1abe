package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowWithinBudget(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), Budget{MinuteLimit: 3, DayLimit: 10})

	for i := 0; i < 3; i++ {
		d, err := l.Allow(context.Background(), "key1", true)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	d, err := l.Allow(context.Background(), "key1", true)
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestRejectedRequestStillCounted(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), Budget{MinuteLimit: 1, DayLimit: 10})

	d, err := l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 0, d.MinuteRemaining())

	// отклоненные попытки продолжают увеличивать счетчик
	for i := 0; i < 3; i++ {
		d, err = l.Allow(context.Background(), "key1", false)
		require.NoError(t, err)
		require.False(t, d.Allowed)
	}
	require.Equal(t, 4, d.MinuteUsed)
	require.Equal(t, 0, d.MinuteRemaining())
}

func TestDayWindowCountsOnlyGet(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), Budget{MinuteLimit: 100, DayLimit: 2})

	// не-GET запросы дневное окно не трогают
	for i := 0; i < 5; i++ {
		d, err := l.Allow(context.Background(), "key1", false)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 0, d.DayUsed)
	}

	d, err := l.Allow(context.Background(), "key1", true)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.DayUsed)
}

func TestDayLimitBlocksGetOnly(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), Budget{MinuteLimit: 100, DayLimit: 1})

	d, err := l.Allow(context.Background(), "key1", true)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(context.Background(), "key1", true)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// POST проходит: дневной бюджет на него не распространяется
	d, err = l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestKeysIsolated(t *testing.T) {
	l := NewLimiter(NewMemoryCounter(), Budget{MinuteLimit: 1, DayLimit: 10})

	d, err := l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = l.Allow(context.Background(), "key2", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMinuteWindowResets(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 30, 0, time.UTC)

	counter := NewMemoryCounter()
	counter.now = func() time.Time { return current }

	l := NewLimiter(counter, Budget{MinuteLimit: 1, DayLimit: 100})
	l.now = func() time.Time { return current }

	d, err := l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// после границы минуты счетчик начинается заново
	current = current.Add(time.Minute)
	d, err = l.Allow(context.Background(), "key1", false)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.MinuteUsed)
}

func TestUntilWindowEnd(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 45, 0, time.UTC)
	require.Equal(t, 15*time.Second, untilWindowEnd(now, time.Minute))
	require.Equal(t, 11*time.Hour+59*time.Minute+15*time.Second, untilWindowEnd(now, 24*time.Hour))
}

func TestRemainingNeverNegative(t *testing.T) {
	d := &Decision{MinuteLimit: 1, DayLimit: 1, MinuteUsed: 5, DayUsed: 5}
	require.Equal(t, 0, d.MinuteRemaining())
	require.Equal(t, 0, d.DayRemaining())
}

func TestMemoryCounterConcurrent(t *testing.T) {
	counter := NewMemoryCounter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := counter.Incr(context.Background(), "key1", time.Minute)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := counter.Incr(context.Background(), "key1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 51, n)
}
