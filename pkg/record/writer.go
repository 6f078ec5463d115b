package record

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"sensrec/pkg/log"
	"sensrec/pkg/record/compression"
	"sensrec/pkg/record/rslformat"
)

// MaxCachedSamples base bound on per-stream in-flight frames. The
// effective bound for a stream is scaled by its framerate relative to
// the slowest declared stream.
const MaxCachedSamples = 5

// Configuration errors, fatal to the instance.
var (
	ErrAlreadyConfigured = errors.New("disk writer is already configured")
	ErrInvalidFrameRate  = errors.New("illegal frame rate value")
	ErrNoActiveStreams   = errors.New("no streams were declared")
)

// File is the random-access byte sink a recording is written to.
// Satisfied by *os.File.
type File interface {
	io.Writer
	io.Seeker
	io.Closer
}

// OpenFileFunc opens the recording target for writing.
type OpenFileFunc func(path string) (File, error)

func openFile(path string) (File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

// DiskWriter owns the sample queue, the admission policy and the single
// background goroutine that serializes samples into the container file.
//
// RecordSample is called from capture callbacks and never blocks beyond
// bounded lock acquisition. The write goroutine is the only actor that
// may block.
type DiskWriter struct {
	logger   *log.Logger
	openFile OpenFileFunc // Injectable for testing.
	enc      *compression.Encoder

	// mu guards the queue, the flags, the counters and the file handle.
	mu         sync.Mutex
	configured bool
	paused     bool
	stopping   bool
	started    bool
	queue      []Sample
	file       File
	out        *rslformat.Writer
	minFPS     int32
	inFlight   map[StreamID]int32
	writeErr   error

	// Owned by the write goroutine after Start.
	frameCount   map[StreamID]uint32
	countOffsets map[StreamID]int64

	recID string // Recording id for log events.

	// wake is buffered so producers never wait on the write goroutine.
	wake chan struct{}
	done chan struct{}
}

// NewDiskWriter returns an unconfigured DiskWriter.
func NewDiskWriter(logger *log.Logger) *DiskWriter {
	return &DiskWriter{
		logger:   logger,
		openFile: openFile,
		enc:      compression.NewEncoder(),

		inFlight:     make(map[StreamID]int32),
		frameCount:   make(map[StreamID]uint32),
		countOffsets: make(map[StreamID]int64),

		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Configure validates the config, opens the target file and writes all
// metadata chunks. Must be called exactly once, a second call returns
// ErrAlreadyConfigured without touching the file.
func (w *DiskWriter) Configure(config RecordingConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.configured {
		return ErrAlreadyConfigured
	}

	minFPS, err := minFramerate(config.Streams)
	if err != nil {
		return err
	}

	file, err := w.openFile(config.FilePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	if err := w.writeMetadata(file, config); err != nil {
		file.Close()
		return err
	}

	w.file = file
	w.minFPS = minFPS
	w.recID = config.FilePath
	w.configured = true
	return nil
}

func minFramerate(streams map[StreamID]StreamProfile) (int32, error) {
	if len(streams) == 0 {
		return 0, ErrNoActiveStreams
	}

	min := int32(0)
	for _, profile := range streams {
		if profile.Framerate <= 0 {
			return 0, ErrInvalidFrameRate
		}
		if min == 0 || profile.Framerate < min {
			min = profile.Framerate
		}
	}
	return min, nil
}

func (w *DiskWriter) writeMetadata(file File, config RecordingConfig) error {
	out, err := rslformat.NewWriter(file, rslformat.FileHeader{
		StreamCount:      int32(len(config.Streams)),
		CoordinateSystem: config.CoordinateSystem,
	})
	if err != nil {
		return err
	}

	if err := out.WriteDeviceInfo(config.Device); err != nil {
		return fmt.Errorf("write device info: %w", err)
	}

	swInfo := rslformat.SwInfo{SDK: SDKVersion, Driver: DriverVersion}
	if err := out.WriteSwInfo(swInfo); err != nil {
		return fmt.Errorf("write sw info: %w", err)
	}

	if err := out.WriteCapabilities(config.Capabilities); err != nil {
		return fmt.Errorf("write capabilities: %w", err)
	}

	if err := out.WriteMotionIntrinsics(config.MotionIntrinsics); err != nil {
		return fmt.Errorf("write motion intrinsics: %w", err)
	}

	// Stream infos are written in stream id order so the layout does
	// not depend on map iteration.
	streams := make([]StreamID, 0, len(config.Streams))
	for stream := range config.Streams {
		streams = append(streams, stream)
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i] < streams[j] })

	infos := make([]rslformat.StreamInfo, len(streams))
	for i, stream := range streams {
		profile := config.Streams[stream]

		err := w.enc.AddCodec(int32(stream), int32(profile.Format), config.CompressionLevel)
		if err != nil {
			return fmt.Errorf("add codec: %w", err)
		}

		infos[i] = rslformat.StreamInfo{
			Stream:      int32(stream),
			Compression: w.enc.CompressionType(int32(stream)),
			Profile:     profile.diskProfile(),
		}
	}

	offsets, err := out.WriteStreamInfos(infos)
	if err != nil {
		return fmt.Errorf("write stream infos: %w", err)
	}
	for i, stream := range streams {
		w.countOffsets[stream] = offsets[i]
	}

	if err := out.WriteProperties(config.Options); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}

	if err := out.PatchFirstFrameOffset(); err != nil {
		return fmt.Errorf("patch first frame offset: %w", err)
	}

	w.out = out
	return nil
}

// Start spawns the write goroutine. Returns false if the writer is not
// configured. Must not be called twice.
func (w *DiskWriter) Start() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.configured || w.started {
		return false
	}
	w.started = true

	go w.writeLoop()
	return true
}

// RecordSample runs the admission policy and queues the sample for the
// write goroutine. Ignored entirely while paused. Never blocks on the
// write goroutine, regardless of queue depth.
func (w *DiskWriter) RecordSample(sample Sample) {
	w.mu.Lock()
	if !w.configured || w.paused || w.stopping {
		w.mu.Unlock()
		return
	}
	admitted := w.allowSample(sample)
	if admitted {
		w.queue = append(w.queue, sample)
	}
	w.mu.Unlock()

	if !admitted {
		w.logger.Warn().
			Src("recorder").
			Rec(w.recID).
			Msgf("sample drop, capture time - %v", sample.base().CaptureTime)
		return
	}

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// allowSample decides whether a sample is queued or dropped. Non-image
// samples are always admitted. A stream may keep MaxCachedSamples
// frames in flight, scaled up by its framerate relative to the slowest
// stream. Caller must hold mu.
func (w *DiskWriter) allowSample(sample Sample) bool {
	frame, isFrame := sample.(*FrameSample)
	if !isFrame {
		return true
	}

	maxSamples := MaxCachedSamples * frame.Framerate / w.minFPS
	if w.inFlight[frame.Stream] >= maxSamples {
		return false
	}
	w.inFlight[frame.Stream]++
	return true
}

// SetPause discards every queued sample and sets the pause flag.
// Paused time contributes no recorded samples.
func (w *DiskWriter) SetPause(pause bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.discardQueue()
	w.paused = pause
}

// Caller must hold mu.
func (w *DiskWriter) discardQueue() {
	for _, sample := range w.queue {
		if frame, ok := sample.(*FrameSample); ok {
			w.inFlight[frame.Stream]--
		}
	}
	w.queue = nil
}

// Stop discards any queued samples, waits for the write goroutine to
// patch the per-stream frame counts and closes the file. Idempotent.
// Returns the first mid-recording write error, if any.
func (w *DiskWriter) Stop() error {
	w.mu.Lock()
	w.stopping = true
	w.discardQueue()
	started := w.started
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}

	if started {
		<-w.done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
	return w.writeErr
}

// Close implements io.Closer by invoking Stop.
func (w *DiskWriter) Close() error {
	return w.Stop()
}

// writeLoop serializes queued samples in FIFO order until stopped, then
// backpatches the per-stream frame counts.
func (w *DiskWriter) writeLoop() {
	defer close(w.done)

	for {
		<-w.wake

		// One pop per lock acquisition to bound lock hold time.
		for {
			w.mu.Lock()
			if len(w.queue) == 0 {
				w.mu.Unlock()
				break
			}
			sample := w.queue[0]
			w.queue = w.queue[1:]
			w.mu.Unlock()

			if err := w.writeSample(sample); err != nil {
				w.logger.Error().
					Src("recorder").
					Rec(w.recID).
					Msgf("write sample: %v", err)

				w.mu.Lock()
				if w.writeErr == nil {
					w.writeErr = err
				}
				w.stopping = true
				w.discardQueue()
				w.mu.Unlock()
			}
		}

		w.mu.Lock()
		stopping := w.stopping
		w.mu.Unlock()
		if stopping {
			break
		}
	}

	w.patchFrameCounts()
}

func (w *DiskWriter) writeSample(sample Sample) error {
	switch s := sample.(type) {
	case *FrameSample:
		return w.writeFrame(s)
	case *MotionSample:
		if err := w.writeSampleInfo(s); err != nil {
			return err
		}
		if err := w.out.WriteMotionData(s.Data); err != nil {
			return fmt.Errorf("write motion data: %w", err)
		}
		return nil
	case *TimeStampSample:
		if err := w.writeSampleInfo(s); err != nil {
			return err
		}
		if err := w.out.WriteTimeStampData(s.Data); err != nil {
			return fmt.Errorf("write timestamp data: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown sample type %T", sample)
	}
}

// writeSampleInfo writes the sample's index chunk and records where the
// sample starts in the file.
func (w *DiskWriter) writeSampleInfo(sample Sample) error {
	info := rslformat.SampleInfo{
		Type:        sample.sampleType(),
		CaptureTime: sample.base().CaptureTime,
	}
	if err := w.out.WriteSampleInfo(&info); err != nil {
		return fmt.Errorf("write sample info: %w", err)
	}
	sample.base().Offset = info.Offset
	return nil
}

// writeFrame encodes and persists an image frame. A codec failure skips
// the whole frame record and the recording continues, the frame count
// only reflects frames actually on disk.
func (w *DiskWriter) writeFrame(frame *FrameSample) error {
	defer func() {
		w.mu.Lock()
		w.inFlight[frame.Stream]--
		w.mu.Unlock()
	}()

	info := frame.frameInfo()
	raw := frame.Data[:frame.rawSize()]

	var payload []byte
	if w.enc.CompressionType(int32(frame.Stream)) == rslformat.CompressionNone {
		payload = raw
	} else {
		encoded, err := w.enc.EncodeFrame(info, raw)
		if err != nil {
			w.logger.Error().
				Src("recorder").
				Rec(w.recID).
				Msgf("encode frame, stream %v: %v", frame.Stream, err)
			return nil
		}
		payload = encoded
	}

	if err := w.writeSampleInfo(frame); err != nil {
		return err
	}
	if err := w.out.WriteFrameInfo(info); err != nil {
		return fmt.Errorf("write frame info: %w", err)
	}
	if err := w.out.WriteSampleData(payload); err != nil {
		return fmt.Errorf("write frame data: %w", err)
	}

	w.frameCount[frame.Stream]++
	return nil
}

// patchFrameCounts overwrites each stream's reserved frame count field
// with the final value. Streams without recorded frames are skipped,
// their field keeps the zero written at configure time.
func (w *DiskWriter) patchFrameCounts() {
	streams := make([]StreamID, 0, len(w.countOffsets))
	for stream := range w.countOffsets {
		streams = append(streams, stream)
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i] < streams[j] })

	for _, stream := range streams {
		count := w.frameCount[stream]
		if count == 0 {
			continue
		}
		if err := w.out.PatchFrameCount(w.countOffsets[stream], count); err != nil {
			w.logger.Error().
				Src("recorder").
				Rec(w.recID).
				Msgf("patch frame count, stream %v: %v", stream, err)
			continue
		}
		w.logger.Info().
			Src("recorder").
			Rec(w.recID).
			Msgf("stream %v, number of frames - %d", stream, count)
	}
}
