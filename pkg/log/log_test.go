package log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *Logger {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := NewLogger()
	logger.Start(ctx)
	return logger
}

func TestLogger(t *testing.T) {
	t.Run("event", func(t *testing.T) {
		logger := newTestLogger(t)

		feed, cancel := logger.Subscribe()
		defer cancel()

		go logger.Warn().
			Src("recorder").
			Rec("rec1").
			Time(time.Unix(0, 2000)).
			Msgf("sample drop, stream %d", 1)

		actual := <-feed
		expected := Log{
			Level: LevelWarning,
			Time:  2,
			Msg:   "sample drop, stream 1",
			Src:   "recorder",
			Rec:   "rec1",
		}
		require.Equal(t, expected, actual)
	})
	t.Run("levels", func(t *testing.T) {
		logger := newTestLogger(t)

		feed, cancel := logger.Subscribe()
		defer cancel()

		cases := []struct {
			event    *Event
			expected Level
		}{
			{logger.Error(), LevelError},
			{logger.Warn(), LevelWarning},
			{logger.Info(), LevelInfo},
			{logger.Debug(), LevelDebug},
		}
		for _, tc := range cases {
			go tc.event.Msg("test")
			actual := <-feed
			require.Equal(t, tc.expected, actual.Level)
		}
	})
	t.Run("unsubBeforeMsg", func(t *testing.T) {
		logger := newTestLogger(t)

		feed1, cancel1 := logger.Subscribe()
		feed2, cancel2 := logger.Subscribe()
		cancel2()
		defer cancel1()

		go logger.Info().Msg("test")

		actual1 := <-feed1
		require.Equal(t, "test", actual1.Msg)

		actual2 := <-feed2
		require.Equal(t, "", actual2.Msg)
	})
	t.Run("slowSubscriber", func(t *testing.T) {
		logger := newTestLogger(t)

		// Subscriber that never reads.
		feed, cancel := logger.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < 10; i++ {
				logger.Warn().Src("recorder").Msg("drop")
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Msg blocked on slow subscriber")
		}

		actual := <-feed
		require.Equal(t, "drop", actual.Msg)
	})
	t.Run("noSubscribers", func(t *testing.T) {
		logger := newTestLogger(t)

		done := make(chan struct{})
		go func() {
			logger.Info().Msg("dropped")
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Msg blocked without subscribers")
		}
	})
}
