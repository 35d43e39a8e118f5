package scheduler

import (
	"testing"
	"time"
)

func TestNextForecastRun(t *testing.T) {
	s := New(nil, nil, time.Minute, 3)

	t.Run("before the hour runs today", func(t *testing.T) {
		s.now = func() time.Time {
			return time.Date(2026, 8, 14, 1, 30, 0, 0, time.UTC)
		}
		got := s.nextForecastRun()
		want := time.Date(2026, 8, 14, 3, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("nextForecastRun() = %v, want %v", got, want)
		}
	})

	t.Run("after the hour runs tomorrow", func(t *testing.T) {
		s.now = func() time.Time {
			return time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
		}
		got := s.nextForecastRun()
		want := time.Date(2026, 8, 15, 3, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("nextForecastRun() = %v, want %v", got, want)
		}
	})

	t.Run("exactly on the hour runs tomorrow", func(t *testing.T) {
		s.now = func() time.Time {
			return time.Date(2026, 8, 14, 3, 0, 0, 0, time.UTC)
		}
		got := s.nextForecastRun()
		want := time.Date(2026, 8, 15, 3, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("nextForecastRun() = %v, want %v", got, want)
		}
	})
}
