package sensrec

import (
	"context"
	"os"
	"testing"

	"sensrec/pkg/record"
	"sensrec/pkg/record/rslformat"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	engine := NewEngine(Options{
		StorageDir:     t.TempDir(),
		MaxDiskUsageGB: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, engine.Start(ctx))

	return engine
}

func testRecordingConfig() record.RecordingConfig {
	return record.RecordingConfig{
		Streams: map[record.StreamID]record.StreamProfile{
			record.StreamDepth: {
				Format:    record.FormatZ16,
				Width:     4,
				Height:    2,
				Stride:    8,
				Framerate: 30,
			},
		},
		Device: rslformat.DeviceInfo{Name: "cam"},
	}
}

func TestEngine(t *testing.T) {
	engine := newTestEngine(t)

	path, err := engine.StartRecording(testRecordingConfig())
	require.NoError(t, err)
	require.NotEmpty(t, path)

	// Only one recording at a time.
	_, err = engine.StartRecording(testRecordingConfig())
	require.ErrorIs(t, err, ErrRecordingActive)

	engine.RecordSample(&record.FrameSample{
		Stream:    record.StreamDepth,
		Format:    record.FormatZ16,
		Width:     4,
		Height:    2,
		Stride:    8,
		Framerate: 30,
		Number:    1,
		Data:      make([]byte, 16),
	})

	require.NoError(t, engine.StopRecording())

	// The finalized file is a readable container.
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	_, header, err := rslformat.NewReader(file)
	require.NoError(t, err)
	require.Equal(t, int32(1), header.StreamCount)

	// A second recording may start after the first one stopped.
	path2, err := engine.StartRecording(testRecordingConfig())
	require.NoError(t, err)
	require.NotEqual(t, path, path2)
	require.NoError(t, engine.StopRecording())
}

func TestEngineNoActiveRecording(t *testing.T) {
	engine := newTestEngine(t)

	// Both are no-ops without an active recording.
	engine.RecordSample(&record.FrameSample{Stream: record.StreamDepth})
	engine.SetPause(true)
	require.NoError(t, engine.StopRecording())
}
