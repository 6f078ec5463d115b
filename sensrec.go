// Package sensrec assembles the sensor recording engine. It wires the
// structured logger and its on-disk store, the recordings directory
// manager, host resource monitoring and the disk writer.
package sensrec

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"sensrec/pkg/log"
	"sensrec/pkg/record"
	"sensrec/pkg/storage"
	"sensrec/pkg/system"
)

// Options for a new Engine.
type Options struct {
	// StorageDir holds the recordings directory and the log database.
	StorageDir string

	// MaxDiskUsageGB caps the space recordings may occupy, zero
	// disables purging.
	MaxDiskUsageGB float64

	// PurgeInterval between disk usage checks. Defaults to 10 minutes.
	PurgeInterval time.Duration

	// LogToStdout mirrors the log feed to stdout.
	LogToStdout bool
}

// ErrRecordingActive a recording is already in progress.
var ErrRecordingActive = errors.New("a recording is already active")

// Engine ties the recording pipeline to its supporting services.
// Create with NewEngine and call Start before recording.
type Engine struct {
	Logger  *log.Logger
	LogDB   *log.DB
	Storage *storage.Manager
	System  *system.System

	options Options
	wg      *sync.WaitGroup

	mu     sync.Mutex
	writer *record.DiskWriter
}

// NewEngine returns an unstarted engine.
func NewEngine(options Options) *Engine {
	if options.PurgeInterval == 0 {
		options.PurgeInterval = 10 * time.Minute
	}

	wg := &sync.WaitGroup{}
	logger := log.NewLogger()
	logDB := log.NewDB(filepath.Join(options.StorageDir, "logs.db"), wg)
	manager := storage.NewManager(options.StorageDir, options.MaxDiskUsageGB, logger)

	sys := system.New(func() (storage.DiskUsage, error) {
		return manager.DiskUsage(10 * time.Minute)
	}, logger)

	return &Engine{
		Logger:  logger,
		LogDB:   logDB,
		Storage: manager,
		System:  sys,

		options: options,
		wg:      wg,
	}
}

// Start launches the background services. They run until ctx is
// canceled, call Wait after cancellation to flush the log store.
func (e *Engine) Start(ctx context.Context) error {
	e.Logger.Start(ctx)
	if e.options.LogToStdout {
		go e.Logger.LogToStdout(ctx)
	}

	if err := e.Storage.PrepareEnvironment(); err != nil {
		return fmt.Errorf("prepare environment: %w", err)
	}

	if err := e.LogDB.Init(ctx); err != nil {
		return fmt.Errorf("init log database: %w", err)
	}
	go e.LogDB.SaveLogs(ctx, e.Logger)

	go e.Storage.PurgeLoop(ctx, e.options.PurgeInterval)
	go e.System.StatusLoop(ctx)

	return nil
}

// StartRecording opens a recording and starts its write goroutine. If
// the config has no file path, one is derived from the storage layout
// and the current time. Returns the path the recording is written to.
func (e *Engine) StartRecording(config record.RecordingConfig) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.writer != nil {
		return "", ErrRecordingActive
	}

	if config.FilePath == "" {
		now := time.Now()
		path, err := e.Storage.RecordingPath(now.Format("15-04-05.000000000"), now)
		if err != nil {
			return "", fmt.Errorf("recording path: %w", err)
		}
		config.FilePath = path
	}

	writer := record.NewDiskWriter(e.Logger)
	if err := writer.Configure(config); err != nil {
		return "", err
	}
	writer.Start()

	e.writer = writer
	return config.FilePath, nil
}

// RecordSample hands a sample to the active recording. Samples arriving
// with no active recording are dropped silently.
func (e *Engine) RecordSample(sample record.Sample) {
	e.mu.Lock()
	writer := e.writer
	e.mu.Unlock()

	if writer != nil {
		writer.RecordSample(sample)
	}
}

// SetPause pauses or resumes the active recording.
func (e *Engine) SetPause(pause bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.writer != nil {
		e.writer.SetPause(pause)
	}
}

// StopRecording finalizes the active recording and releases it. A new
// recording may be started afterwards.
func (e *Engine) StopRecording() error {
	e.mu.Lock()
	writer := e.writer
	e.writer = nil
	e.mu.Unlock()

	if writer == nil {
		return nil
	}
	return writer.Stop()
}

// Wait blocks until the background services have shut down. Must only
// be called after the Start context is canceled.
func (e *Engine) Wait() {
	e.wg.Wait()
}
