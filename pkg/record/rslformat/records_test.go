package rslformat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHeader(t *testing.T) {
	header := FileHeader{
		FirstFrameOffset: 500,
		StreamCount:      2,
		CoordinateSystem: 1,
	}

	expected := []byte{
		'R', 'S', 'L', '2', // Id.
		2, 0, 0, 0, // Version.
		0xf4, 1, 0, 0, // First frame offset.
		2, 0, 0, 0, // Stream count.
		1, 0, 0, 0, // Coordinate system.
	}
	require.Equal(t, expected, header.Marshal())

	var header2 FileHeader
	require.NoError(t, header2.Unmarshal(expected))
	require.Equal(t, header, header2)
}

func TestFileHeaderErrors(t *testing.T) {
	t.Run("badMagic", func(t *testing.T) {
		buf := FileHeader{}.Marshal()
		buf[0] = 'X'

		var header FileHeader
		require.ErrorIs(t, header.Unmarshal(buf), ErrInvalidMagic)
	})
	t.Run("badVersion", func(t *testing.T) {
		buf := FileHeader{}.Marshal()
		buf[4] = 3

		var header FileHeader
		require.ErrorIs(t, header.Unmarshal(buf), ErrUnsupportedVersion)
	})
}

func TestChunkHeader(t *testing.T) {
	chunk := ChunkHeader{ID: ChunkSampleInfo, Size: 20}

	expected := []byte{
		7, 0, 0, 0, // Id.
		20, 0, 0, 0, // Size.
	}
	require.Equal(t, expected, chunk.Marshal())

	var chunk2 ChunkHeader
	chunk2.Unmarshal(expected)
	require.Equal(t, chunk, chunk2)
}

func TestDeviceInfo(t *testing.T) {
	info := DeviceInfo{
		Name:     "cam",
		Serial:   "123",
		Firmware: "1.0",
	}

	buf := info.Marshal()
	require.Len(t, buf, DeviceInfoSize)
	require.Equal(t, []byte{'c', 'a', 'm', 0}, buf[0:4])
	require.Equal(t, []byte{'1', '2', '3', 0}, buf[128:132])
	require.Equal(t, []byte{'1', '.', '0', 0}, buf[160:164])

	var info2 DeviceInfo
	info2.Unmarshal(buf)
	require.Equal(t, info, info2)
}

func TestSwInfo(t *testing.T) {
	info := SwInfo{
		SDK:    SwVersion{Major: 1, Minor: 2, Patch: 3, Build: 4},
		Driver: SwVersion{Major: 5, Minor: 6, Patch: 7, Build: 8},
	}

	expected := []byte{
		1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0, // SDK.
		5, 0, 0, 0, 6, 0, 0, 0, 7, 0, 0, 0, 8, 0, 0, 0, // Driver.
	}
	require.Equal(t, expected, info.Marshal())

	var info2 SwInfo
	info2.Unmarshal(expected)
	require.Equal(t, info, info2)
}

func TestCapabilities(t *testing.T) {
	caps := []Capability{1, 3}

	expected := []byte{
		1, 0, 0, 0,
		3, 0, 0, 0,
	}
	require.Equal(t, expected, MarshalCapabilities(caps))
	require.Equal(t, caps, UnmarshalCapabilities(expected))
}

func TestMotionIntrinsics(t *testing.T) {
	intrinsics := MotionIntrinsics{
		Accel: MotionDeviceIntrinsics{
			Data:           [3][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}},
			NoiseVariances: [3]float32{0.1, 0.2, 0.3},
			BiasVariances:  [3]float32{0.4, 0.5, 0.6},
		},
		Gyro: MotionDeviceIntrinsics{
			NoiseVariances: [3]float32{1, 2, 3},
		},
	}

	buf := intrinsics.Marshal()
	require.Len(t, buf, MotionIntrinsicsSize)

	var intrinsics2 MotionIntrinsics
	intrinsics2.Unmarshal(buf)
	require.Equal(t, intrinsics, intrinsics2)
}

func TestStreamInfo(t *testing.T) {
	info := StreamInfo{
		Stream:      1,
		Compression: CompressionLZ4,
		FrameCount:  256,
		Profile: StreamProfile{
			Format:    2,
			Width:     640,
			Height:    480,
			Framerate: 30,
		},
	}

	expected := []byte{
		1, 0, 0, 0, // Stream.
		1, 0, 0, 0, // Compression.
		0, 1, 0, 0, // Frame count.
		2, 0, 0, 0, // Format.
		0x80, 2, 0, 0, // Width.
		0xe0, 1, 0, 0, // Height.
		30, 0, 0, 0, // Framerate.
	}
	require.Equal(t, expected, info.Marshal())

	var info2 StreamInfo
	info2.Unmarshal(expected)
	require.Equal(t, info, info2)
}

func TestDeviceOptions(t *testing.T) {
	opts := []DeviceOption{
		{Option: 4, Value: 0.5},
		{Option: 9, Value: -1},
	}

	buf := MarshalDeviceOptions(opts)
	require.Len(t, buf, 2*DeviceOptionSize)
	require.Equal(t, opts, UnmarshalDeviceOptions(buf))
}

func TestSampleInfo(t *testing.T) {
	info := SampleInfo{
		Type:        SampleTypeMotion,
		CaptureTime: 1000000000,
		Offset:      600,
	}

	expected := []byte{
		2, 0, 0, 0, // Type.
		0, 0xca, 0x9a, 0x3b, 0, 0, 0, 0, // Capture time.
		0x58, 2, 0, 0, 0, 0, 0, 0, // Offset.
	}
	require.Equal(t, expected, info.Marshal())

	var info2 SampleInfo
	info2.Unmarshal(expected)
	require.Equal(t, info, info2)
}

func TestFrameInfo(t *testing.T) {
	info := FrameInfo{
		Stream:     1,
		Format:     2,
		Width:      640,
		Height:     480,
		Stride:     1280,
		Framerate:  60,
		Number:     77,
		Timestamp:  123456789,
		SystemTime: 987654321,
	}

	buf := info.Marshal()
	require.Len(t, buf, FrameInfoSize)

	var info2 FrameInfo
	info2.Unmarshal(buf)
	require.Equal(t, info, info2)
}

func TestMotionData(t *testing.T) {
	data := MotionData{
		Source:    MotionSourceGyro,
		Timestamp: 42,
		Axes:      [3]float32{0.5, -0.5, 9.8},
	}

	buf := data.Marshal()
	require.Len(t, buf, MotionDataSize)

	var data2 MotionData
	data2.Unmarshal(buf)
	require.Equal(t, data, data2)
}

func TestTimeStampData(t *testing.T) {
	data := TimeStampData{
		Source:      3,
		FrameNumber: 99,
		Timestamp:   -1,
	}

	buf := data.Marshal()
	require.Len(t, buf, TimeStampDataSize)

	var data2 TimeStampData
	data2.Unmarshal(buf)
	require.Equal(t, data, data2)
}
