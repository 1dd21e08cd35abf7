package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 15, 42, 7, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestEndOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	end := EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.Before(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.True(t, SameDay(ts, end))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestWithinLast(t *testing.T) {
	assert.True(t, WithinLast(time.Now().UTC().Add(-30*time.Minute), time.Hour))
	assert.False(t, WithinLast(time.Now().UTC().Add(-2*time.Hour), time.Hour))
}

func TestDaysAgo(t *testing.T) {
	assert.True(t, DaysAgo(7).Before(DaysAgo(6)))
	assert.Equal(t, time.UTC, DaysAgo(1).Location())
}
