// Package storage manages the recordings directory and disk usage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sensrec/pkg/log"
)

// Manager storage manager.
type Manager struct {
	storageDir   string
	storageDirFS fs.FS
	disk         *disk
	removeAll    func(string) error

	logger *log.Logger
}

// NewManager returns new manager. maxDiskUsageGB caps the space
// recordings may occupy, zero disables purging.
func NewManager(storageDir string, maxDiskUsageGB float64, logger *log.Logger) *Manager {
	storageDirFS := os.DirFS(storageDir)
	return &Manager{
		storageDir:   storageDir,
		storageDirFS: storageDirFS,
		disk:         newDisk(storageDirFS, maxDiskUsageGB),
		removeAll:    os.RemoveAll,

		logger: logger,
	}
}

// RecordingsDir returns path to recordings directory.
func (s *Manager) RecordingsDir() string {
	return filepath.Join(s.storageDir, "recordings")
}

// RecordingPath returns the file path for a new recording, nested in a
// directory named after the current day. Creates the day directory.
func (s *Manager) RecordingPath(name string, now time.Time) (string, error) {
	dayDir := filepath.Join(s.RecordingsDir(), now.Format("2006-01-02"))
	if err := os.MkdirAll(dayDir, 0o700); err != nil {
		return "", fmt.Errorf("create day directory: %w", err)
	}
	return filepath.Join(dayDir, name+".rsl"), nil
}

// PrepareEnvironment creates the recordings directory.
func (s *Manager) PrepareEnvironment() error {
	err := os.MkdirAll(s.RecordingsDir(), 0o700)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create recordings directory: %v: %w", s.storageDir, err)
	}
	return nil
}

// DiskUsageCached returns cached value and its age.
func (s *Manager) DiskUsageCached() (DiskUsage, time.Duration) {
	return s.disk.usageCached()
}

// DiskUsage returns cached value if within maxAge.
// Will update and return new value if the cached value is too old.
func (s *Manager) DiskUsage(maxAge time.Duration) (DiskUsage, error) {
	return s.disk.usage(maxAge)
}

// purge checks if disk usage is above 99%,
// if true deletes all recordings from the oldest day.
func (s *Manager) purge() error {
	usage, err := s.DiskUsage(10 * time.Minute)
	if err != nil {
		return fmt.Errorf("update disk usage: %w", err)
	}
	if usage.Percent < 99 {
		return nil
	}

	days, err := fs.ReadDir(s.storageDirFS, "recordings")
	if err != nil {
		return fmt.Errorf("read recordings directory: %w", err)
	}
	if len(days) == 0 {
		return nil
	}

	// Day directories are named YYYY-MM-DD, the first entry is the
	// oldest day.
	oldest := filepath.Join(s.RecordingsDir(), days[0].Name())
	if err := s.removeAll(oldest); err != nil {
		return fmt.Errorf("remove directory: %w", err)
	}
	return nil
}

// PurgeLoop runs purge on an interval until context is canceled.
func (s *Manager) PurgeLoop(ctx context.Context, duration time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(duration):
			if err := s.purge(); err != nil {
				s.logger.Error().
					Src("storage").
					Msgf("could not purge storage: %v", err)
			}
		}
	}
}

// Only used to calculate and cache disk usage.
type disk struct {
	storageDirFS   fs.FS
	maxUsageBytes  int64
	diskUsageBytes func(fs.FS) int64

	cache      DiskUsage
	lastUpdate time.Time
	cacheLock  sync.Mutex

	updateLock sync.Mutex
}

func newDisk(storageDirFS fs.FS, maxDiskUsageGB float64) *disk {
	return &disk{
		storageDirFS:   storageDirFS,
		maxUsageBytes:  int64(maxDiskUsageGB * gigabyte),
		diskUsageBytes: diskUsageBytes,
	}
}

func (d *disk) usageCached() (DiskUsage, time.Duration) {
	d.cacheLock.Lock()
	defer d.cacheLock.Unlock()

	return d.cache, time.Since(d.lastUpdate)
}

// usage returns cached value if within maxAge.
// Will update and return new value if the cached value is too old.
func (d *disk) usage(maxAge time.Duration) (DiskUsage, error) {
	maxTime := time.Now().Add(-maxAge)

	d.cacheLock.Lock()
	if d.lastUpdate.After(maxTime) {
		defer d.cacheLock.Unlock()
		return d.cache, nil
	}
	d.cacheLock.Unlock()

	// Cache is too old, acquire update lock and update it.
	d.updateLock.Lock()
	defer d.updateLock.Unlock()

	// Check if it was updated while we were waiting for the update lock.
	d.cacheLock.Lock()
	if d.lastUpdate.After(maxTime) {
		defer d.cacheLock.Unlock()
		return d.cache, nil
	}
	// Still outdated.
	d.cacheLock.Unlock()

	updatedUsage := d.calculateDiskUsage()

	d.cacheLock.Lock()
	d.cache = updatedUsage
	d.lastUpdate = time.Now()
	d.cacheLock.Unlock()

	return updatedUsage, nil
}

func (d *disk) calculateDiskUsage() DiskUsage {
	used := d.diskUsageBytes(d.storageDirFS)

	percent := func() int {
		if used == 0 || d.maxUsageBytes == 0 {
			return 0
		}
		return int((used * 100) / d.maxUsageBytes)
	}()

	return DiskUsage{
		Used:      used,
		Percent:   percent,
		Max:       d.maxUsageBytes / int64(gigabyte),
		Formatted: formatDiskUsage(float64(used)),
	}
}

// DiskUsage in Bytes.
type DiskUsage struct {
	Used      int64
	Percent   int
	Max       int64
	Formatted string
}

const (
	kilobyte float64 = 1000
	megabyte         = kilobyte * 1000
	gigabyte         = megabyte * 1000
	terabyte         = gigabyte * 1000
)

func formatDiskUsage(used float64) string {
	switch {
	case used < 1000*megabyte:
		return fmt.Sprintf("%.0fMB", used/megabyte)
	case used < 10*gigabyte:
		return fmt.Sprintf("%.2fGB", used/gigabyte)
	case used < 100*gigabyte:
		return fmt.Sprintf("%.1fGB", used/gigabyte)
	case used < 1000*gigabyte:
		return fmt.Sprintf("%.0fGB", used/gigabyte)
	case used < 10*terabyte:
		return fmt.Sprintf("%.2fTB", used/terabyte)
	case used < 100*terabyte:
		return fmt.Sprintf("%.1fTB", used/terabyte)
	default:
		return fmt.Sprintf("%.0fTB", used/terabyte)
	}
}

func diskUsageBytes(fileSystem fs.FS) int64 {
	var used int64
	fs.WalkDir(fileSystem, ".", func(_ string, d fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		used += info.Size()

		return nil
	})
	return used
}
