package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"sensrec/pkg/storage"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/require"
)

func newTestSystem() *System {
	s := New(nil, nil)
	s.cpu = func(context.Context, time.Duration, bool) ([]float64, error) {
		return []float64{11.1}, nil
	}
	s.ram = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{UsedPercent: 22.2}, nil
	}
	s.disk = func() (storage.DiskUsage, error) {
		return storage.DiskUsage{Percent: 33, Formatted: "3.00GB"}, nil
	}
	return s
}

func TestUpdate(t *testing.T) {
	s := newTestSystem()

	require.NoError(t, s.update(context.Background()))
	require.Equal(t, Status{
		CPUUsage:           11,
		RAMUsage:           22,
		DiskUsage:          33,
		DiskUsageFormatted: "3.00GB",
	}, s.Status())
}

func TestUpdateErrors(t *testing.T) {
	mockErr := errors.New("mock")

	t.Run("cpu", func(t *testing.T) {
		s := newTestSystem()
		s.cpu = func(context.Context, time.Duration, bool) ([]float64, error) {
			return nil, mockErr
		}
		require.ErrorIs(t, s.update(context.Background()), mockErr)
	})
	t.Run("ram", func(t *testing.T) {
		s := newTestSystem()
		s.ram = func() (*mem.VirtualMemoryStat, error) { return nil, mockErr }
		require.ErrorIs(t, s.update(context.Background()), mockErr)
	})
	t.Run("disk", func(t *testing.T) {
		s := newTestSystem()
		s.disk = func() (storage.DiskUsage, error) {
			return storage.DiskUsage{}, mockErr
		}
		require.ErrorIs(t, s.update(context.Background()), mockErr)
	})
}

func TestStatusLoopCancel(t *testing.T) {
	s := newTestSystem()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.StatusLoop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StatusLoop did not exit")
	}
}
