package storage

import (
	"testing"
	"time"
)

func TestIDGenerator_UsesUnixMillis(t *testing.T) {
	at := time.Date(2026, 1, 19, 16, 14, 0, 0, time.UTC)
	g := NewIDGenerator(func() time.Time { return at })

	if got := g.Next(); got != at.UnixMilli() {
		t.Errorf("expected %d, got %d", at.UnixMilli(), got)
	}
}

func TestIDGenerator_StrictlyIncreasingOnFrozenClock(t *testing.T) {
	at := time.Date(2026, 1, 19, 16, 14, 0, 0, time.UTC)
	g := NewIDGenerator(func() time.Time { return at })

	prev := g.Next()
	for i := 0; i < 100; i++ {
		next := g.Next()
		if next <= prev {
			t.Fatalf("id %d not greater than previous %d", next, prev)
		}
		prev = next
	}
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 1, 19, 16, 14, 0, 0, time.UTC),
		time.Date(2026, 1, 19, 16, 13, 0, 0, time.UTC),
	}
	i := 0
	g := NewIDGenerator(func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	})

	first := g.Next()
	second := g.Next()
	if second != first+1 {
		t.Errorf("expected %d after clock moved back, got %d", first+1, second)
	}
}
