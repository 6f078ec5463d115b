package rslformat

import (
	"bytes"
	"encoding/binary"
	"testing"

	"sensrec/pkg/record/writerseeker"

	"github.com/stretchr/testify/require"
)

func TestWriterFullFile(t *testing.T) {
	out := &writerseeker.WriterSeeker{}

	w, err := NewWriter(out, FileHeader{StreamCount: 2, CoordinateSystem: 1})
	require.NoError(t, err)
	require.Equal(t, int64(FileHeaderSize), w.Pos())

	require.NoError(t, w.WriteDeviceInfo(DeviceInfo{Name: "cam"}))
	require.NoError(t, w.WriteSwInfo(SwInfo{SDK: SwVersion{Major: 1}}))
	require.NoError(t, w.WriteCapabilities([]Capability{1, 2}))
	require.NoError(t, w.WriteMotionIntrinsics(MotionIntrinsics{}))

	infos := []StreamInfo{
		{Stream: 0, Compression: CompressionLZ4, Profile: StreamProfile{Framerate: 30}},
		{Stream: 1, Compression: CompressionNone, Profile: StreamProfile{Framerate: 60}},
	}
	offsets, err := w.WriteStreamInfos(infos)
	require.NoError(t, err)
	require.Len(t, offsets, 2)
	require.Equal(t, offsets[0]+StreamInfoSize, offsets[1])

	require.NoError(t, w.WriteProperties([]DeviceOption{{Option: 1, Value: 2}}))
	require.NoError(t, w.PatchFirstFrameOffset())

	firstFrame := w.Pos()

	// One frame sample on stream 1.
	sampleInfo := SampleInfo{Type: SampleTypeFrame, CaptureTime: 100}
	require.NoError(t, w.WriteSampleInfo(&sampleInfo))
	require.Equal(t, uint64(firstFrame), sampleInfo.Offset)
	require.NoError(t, w.WriteFrameInfo(FrameInfo{Stream: 1, Number: 1}))
	require.NoError(t, w.WriteSampleData([]byte{1, 2, 3}))

	// One motion sample.
	motionInfo := SampleInfo{Type: SampleTypeMotion, CaptureTime: 200}
	require.NoError(t, w.WriteSampleInfo(&motionInfo))
	require.NoError(t, w.WriteMotionData(MotionData{Source: MotionSourceAccel}))

	// One timestamp event.
	timeInfo := SampleInfo{Type: SampleTypeTimeStamp, CaptureTime: 300}
	require.NoError(t, w.WriteSampleInfo(&timeInfo))
	require.NoError(t, w.WriteTimeStampData(TimeStampData{Source: 1, FrameNumber: 1}))

	require.NoError(t, w.PatchFrameCount(offsets[1], 1))

	// Header should point at the first sample.
	buf := out.Bytes()
	patched := int32(binary.LittleEndian.Uint32(
		buf[FirstFrameOffsetFieldOffset : FirstFrameOffsetFieldOffset+4]))
	require.Equal(t, int32(firstFrame), patched)

	r, header, err := NewReader(out.BytesReader())
	require.NoError(t, err)
	require.Equal(t, int32(firstFrame), header.FirstFrameOffset)
	require.Equal(t, int32(2), header.StreamCount)
	require.Equal(t, int32(1), header.CoordinateSystem)

	chunks, err := r.ReadAllChunks()
	require.NoError(t, err)

	expectedOrder := []ChunkID{
		ChunkDeviceInfo,
		ChunkSwInfo,
		ChunkCapabilities,
		ChunkMotionIntrinsics,
		ChunkStreamInfo,
		ChunkProperties,
		ChunkSampleInfo,
		ChunkFrameInfo,
		ChunkSampleData,
		ChunkSampleInfo,
		ChunkSampleData,
		ChunkSampleInfo,
		ChunkSampleData,
	}
	actualOrder := make([]ChunkID, 0, len(chunks))
	for _, chunk := range chunks {
		actualOrder = append(actualOrder, chunk.Header.ID)
	}
	require.Equal(t, expectedOrder, actualOrder)

	// The patched frame count is visible through the reader.
	streamInfos, err := StreamInfos(chunks[4].Payload)
	require.NoError(t, err)
	require.Equal(t, int32(0), streamInfos[0].FrameCount)
	require.Equal(t, int32(1), streamInfos[1].FrameCount)

	require.Equal(t, []byte{1, 2, 3}, chunks[8].Payload)
}

func TestStreamInfosBadSize(t *testing.T) {
	_, err := StreamInfos(make([]byte, StreamInfoSize+1))
	require.Error(t, err)
}

func TestReadChunkNegativeSize(t *testing.T) {
	buf := FileHeader{}.Marshal()
	buf = append(buf, ChunkHeader{ID: ChunkDeviceInfo, Size: -1}.Marshal()...)

	r, _, err := NewReader(bytes.NewReader(buf))
	require.NoError(t, err)

	_, err = r.ReadChunk()
	require.ErrorIs(t, err, ErrInvalidChunkSize)
}
