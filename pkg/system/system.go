// Package system samples host resource usage while a recording runs.
package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sensrec/pkg/log"
	"sensrec/pkg/storage"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Status stores system status.
type Status struct {
	CPUUsage           int    `json:"cpuUsage"`
	RAMUsage           int    `json:"ramUsage"`
	DiskUsage          int    `json:"diskUsage"`
	DiskUsageFormatted string `json:"diskUsageFormatted"`
}

type (
	cpuFunc  func(context.Context, time.Duration, bool) ([]float64, error)
	ramFunc  func() (*mem.VirtualMemoryStat, error)
	diskFunc func() (storage.DiskUsage, error)
)

// System periodically samples cpu, ram and recording disk usage.
type System struct {
	cpu  cpuFunc
	ram  ramFunc
	disk diskFunc

	status   Status
	interval time.Duration

	logger *log.Logger
	mu     sync.Mutex
	o      sync.Once
}

// New returns new System.
func New(disk diskFunc, logger *log.Logger) *System {
	return &System{
		cpu:  cpu.PercentWithContext,
		ram:  mem.VirtualMemory,
		disk: disk,

		interval: 10 * time.Second,

		logger: logger,
	}
}

func (s *System) update(ctx context.Context) error {
	cpuUsage, err := s.cpu(ctx, s.interval, false)
	if err != nil {
		return fmt.Errorf("cpu usage: %w", err)
	}
	ramUsage, err := s.ram()
	if err != nil {
		return fmt.Errorf("ram usage: %w", err)
	}
	diskUsage, err := s.disk()
	if err != nil {
		return fmt.Errorf("disk usage: %w", err)
	}

	s.mu.Lock()
	s.status = Status{
		CPUUsage:           int(cpuUsage[0]),
		RAMUsage:           int(ramUsage.UsedPercent),
		DiskUsage:          diskUsage.Percent,
		DiskUsageFormatted: diskUsage.Formatted,
	}
	s.mu.Unlock()

	return nil
}

// StatusLoop updates system status until context is canceled. The cpu
// sampler blocks for the sample interval, so each iteration takes at
// least that long.
func (s *System) StatusLoop(ctx context.Context) {
	s.o.Do(func() {
		for {
			if ctx.Err() != nil {
				return
			}
			if err := s.update(ctx); err != nil {
				s.logger.Error().
					Src("system").
					Msgf("could not update system status: %v", err)
			}
		}
	})
}

// Status returns cpu, ram and disk usage.
func (s *System) Status() Status {
	defer s.mu.Unlock()
	s.mu.Lock()
	return s.status
}
