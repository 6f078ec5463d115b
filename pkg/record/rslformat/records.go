package rslformat

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Version current container format version.
const Version = 2

// MagicID file identifier. ASCII 'R','S','L' followed by '0'+Version.
const MagicID = uint32('R') | uint32('S')<<8 | uint32('L')<<16 | uint32('0'+Version)<<24

// Record sizes.
const (
	FileHeaderSize       = 20
	ChunkHeaderSize      = 8
	DeviceInfoSize       = 192
	SwInfoSize           = 32
	MotionIntrinsicsSize = 144
	StreamInfoSize       = 28
	DeviceOptionSize     = 12
	SampleInfoSize       = 20
	FrameInfoSize        = 48
	MotionDataSize       = 24
	TimeStampDataSize    = 20
)

// FirstFrameOffsetFieldOffset position of the firstFrameOffset field
// inside the file header.
const FirstFrameOffsetFieldOffset = 8

// FrameCountFieldOffset position of the frameCount field inside a
// streamInfo record.
const FrameCountFieldOffset = 8

// ChunkID identifies the payload type of a chunk.
type ChunkID int32

// Chunk ids.
const (
	ChunkDeviceInfo       ChunkID = 1
	ChunkSwInfo           ChunkID = 2
	ChunkCapabilities     ChunkID = 3
	ChunkMotionIntrinsics ChunkID = 4
	ChunkStreamInfo       ChunkID = 5
	ChunkProperties       ChunkID = 6
	ChunkSampleInfo       ChunkID = 7
	ChunkFrameInfo        ChunkID = 8
	ChunkSampleData       ChunkID = 9
)

// SampleType tags a sampleInfo record with the payload that follows it.
type SampleType int32

// Sample types.
const (
	SampleTypeFrame     SampleType = 1
	SampleTypeMotion    SampleType = 2
	SampleTypeTimeStamp SampleType = 3
)

// CompressionType identifies the algorithm used for a stream's pixel payloads.
type CompressionType int32

// Compression types.
const (
	CompressionNone CompressionType = 0
	CompressionLZ4  CompressionType = 1
	CompressionZstd CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// FileHeader .
type FileHeader struct {
	FirstFrameOffset int32
	StreamCount      int32
	CoordinateSystem int32
}

// Marshal file header.
func (h FileHeader) Marshal() []byte {
	out := make([]byte, FileHeaderSize)
	binary.LittleEndian.PutUint32(out[0:4], MagicID)
	binary.LittleEndian.PutUint32(out[4:8], Version)
	binary.LittleEndian.PutUint32(out[8:12], uint32(h.FirstFrameOffset))
	binary.LittleEndian.PutUint32(out[12:16], uint32(h.StreamCount))
	binary.LittleEndian.PutUint32(out[16:20], uint32(h.CoordinateSystem))
	return out
}

// Unmarshal file header.
func (h *FileHeader) Unmarshal(buf []byte) error {
	if binary.LittleEndian.Uint32(buf[0:4]) != MagicID {
		return ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(buf[4:8]) != Version {
		return ErrUnsupportedVersion
	}
	h.FirstFrameOffset = int32(binary.LittleEndian.Uint32(buf[8:12]))
	h.StreamCount = int32(binary.LittleEndian.Uint32(buf[12:16]))
	h.CoordinateSystem = int32(binary.LittleEndian.Uint32(buf[16:20]))
	return nil
}

// ChunkHeader precedes every payload after the file header.
type ChunkHeader struct {
	ID   ChunkID
	Size int32
}

// Marshal chunk header.
func (c ChunkHeader) Marshal() []byte {
	out := make([]byte, ChunkHeaderSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(c.ID))
	binary.LittleEndian.PutUint32(out[4:8], uint32(c.Size))
	return out
}

// Unmarshal chunk header.
func (c *ChunkHeader) Unmarshal(buf []byte) {
	c.ID = ChunkID(binary.LittleEndian.Uint32(buf[0:4]))
	c.Size = int32(binary.LittleEndian.Uint32(buf[4:8]))
}

// DeviceInfo identity of the capture device. Strings longer than their
// on-disk field are truncated, shorter ones are NUL padded.
type DeviceInfo struct {
	Name     string
	Serial   string
	Firmware string
}

// Marshal device info.
func (d DeviceInfo) Marshal() []byte {
	out := make([]byte, DeviceInfoSize)
	copy(out[0:128], d.Name)
	copy(out[128:160], d.Serial)
	copy(out[160:192], d.Firmware)
	return out
}

// Unmarshal device info.
func (d *DeviceInfo) Unmarshal(buf []byte) {
	d.Name = trimNul(buf[0:128])
	d.Serial = trimNul(buf[128:160])
	d.Firmware = trimNul(buf[160:192])
}

func trimNul(buf []byte) string {
	return string(bytes.TrimRight(buf, "\x00"))
}

// SwVersion software component version number.
type SwVersion struct {
	Major int32
	Minor int32
	Patch int32
	Build int32
}

func (v SwVersion) marshalTo(out []byte) {
	binary.LittleEndian.PutUint32(out[0:4], uint32(v.Major))
	binary.LittleEndian.PutUint32(out[4:8], uint32(v.Minor))
	binary.LittleEndian.PutUint32(out[8:12], uint32(v.Patch))
	binary.LittleEndian.PutUint32(out[12:16], uint32(v.Build))
}

func (v *SwVersion) unmarshalFrom(buf []byte) {
	v.Major = int32(binary.LittleEndian.Uint32(buf[0:4]))
	v.Minor = int32(binary.LittleEndian.Uint32(buf[4:8]))
	v.Patch = int32(binary.LittleEndian.Uint32(buf[8:12]))
	v.Build = int32(binary.LittleEndian.Uint32(buf[12:16]))
}

// SwInfo versions of the recording software and the device driver.
type SwInfo struct {
	SDK    SwVersion
	Driver SwVersion
}

// Marshal software info.
func (s SwInfo) Marshal() []byte {
	out := make([]byte, SwInfoSize)
	s.SDK.marshalTo(out[0:16])
	s.Driver.marshalTo(out[16:32])
	return out
}

// Unmarshal software info.
func (s *SwInfo) Unmarshal(buf []byte) {
	s.SDK.unmarshalFrom(buf[0:16])
	s.Driver.unmarshalFrom(buf[16:32])
}

// Capability a single device capability tag.
type Capability int32

// MarshalCapabilities capabilities array payload.
func MarshalCapabilities(caps []Capability) []byte {
	out := make([]byte, 4*len(caps))
	for i, c := range caps {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], uint32(c))
	}
	return out
}

// UnmarshalCapabilities capabilities array payload.
func UnmarshalCapabilities(buf []byte) []Capability {
	caps := make([]Capability, len(buf)/4)
	for i := range caps {
		caps[i] = Capability(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return caps
}

// MotionDeviceIntrinsics intrinsics of a single motion device.
type MotionDeviceIntrinsics struct {
	Data           [3][4]float32 // Scale matrix and bias vector.
	NoiseVariances [3]float32
	BiasVariances  [3]float32
}

func (m MotionDeviceIntrinsics) marshalTo(out []byte) {
	pos := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			binary.LittleEndian.PutUint32(out[pos:pos+4], math.Float32bits(m.Data[i][j]))
			pos += 4
		}
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(out[pos:pos+4], math.Float32bits(m.NoiseVariances[i]))
		pos += 4
	}
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(out[pos:pos+4], math.Float32bits(m.BiasVariances[i]))
		pos += 4
	}
}

func (m *MotionDeviceIntrinsics) unmarshalFrom(buf []byte) {
	pos := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			m.Data[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[pos : pos+4]))
			pos += 4
		}
	}
	for i := 0; i < 3; i++ {
		m.NoiseVariances[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4
	}
	for i := 0; i < 3; i++ {
		m.BiasVariances[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4
	}
}

// MotionIntrinsics intrinsics of the accelerometer and the gyroscope.
type MotionIntrinsics struct {
	Accel MotionDeviceIntrinsics
	Gyro  MotionDeviceIntrinsics
}

// Marshal motion intrinsics.
func (m MotionIntrinsics) Marshal() []byte {
	out := make([]byte, MotionIntrinsicsSize)
	m.Accel.marshalTo(out[0:72])
	m.Gyro.marshalTo(out[72:144])
	return out
}

// Unmarshal motion intrinsics.
func (m *MotionIntrinsics) Unmarshal(buf []byte) {
	m.Accel.unmarshalFrom(buf[0:72])
	m.Gyro.unmarshalFrom(buf[72:144])
}

// StreamProfile static stream configuration as persisted on disk.
type StreamProfile struct {
	Format    int32
	Width     int32
	Height    int32
	Framerate int32
}

// StreamInfo per-stream metadata record. FrameCount is written as zero
// and patched with the final value at stop.
type StreamInfo struct {
	Stream      int32
	Compression CompressionType
	FrameCount  int32
	Profile     StreamProfile
}

// Marshal stream info.
func (s StreamInfo) Marshal() []byte {
	out := make([]byte, StreamInfoSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(s.Stream))
	binary.LittleEndian.PutUint32(out[4:8], uint32(s.Compression))
	binary.LittleEndian.PutUint32(out[8:12], uint32(s.FrameCount))
	binary.LittleEndian.PutUint32(out[12:16], uint32(s.Profile.Format))
	binary.LittleEndian.PutUint32(out[16:20], uint32(s.Profile.Width))
	binary.LittleEndian.PutUint32(out[20:24], uint32(s.Profile.Height))
	binary.LittleEndian.PutUint32(out[24:28], uint32(s.Profile.Framerate))
	return out
}

// Unmarshal stream info.
func (s *StreamInfo) Unmarshal(buf []byte) {
	s.Stream = int32(binary.LittleEndian.Uint32(buf[0:4]))
	s.Compression = CompressionType(binary.LittleEndian.Uint32(buf[4:8]))
	s.FrameCount = int32(binary.LittleEndian.Uint32(buf[8:12]))
	s.Profile.Format = int32(binary.LittleEndian.Uint32(buf[12:16]))
	s.Profile.Width = int32(binary.LittleEndian.Uint32(buf[16:20]))
	s.Profile.Height = int32(binary.LittleEndian.Uint32(buf[20:24]))
	s.Profile.Framerate = int32(binary.LittleEndian.Uint32(buf[24:28]))
}

// DeviceOption a device option and its value at configure time.
type DeviceOption struct {
	Option int32
	Value  float64
}

// MarshalDeviceOptions properties array payload.
func MarshalDeviceOptions(opts []DeviceOption) []byte {
	out := make([]byte, DeviceOptionSize*len(opts))
	for i, o := range opts {
		pos := i * DeviceOptionSize
		binary.LittleEndian.PutUint32(out[pos:pos+4], uint32(o.Option))
		binary.LittleEndian.PutUint64(out[pos+4:pos+12], math.Float64bits(o.Value))
	}
	return out
}

// UnmarshalDeviceOptions properties array payload.
func UnmarshalDeviceOptions(buf []byte) []DeviceOption {
	opts := make([]DeviceOption, len(buf)/DeviceOptionSize)
	for i := range opts {
		pos := i * DeviceOptionSize
		opts[i].Option = int32(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		opts[i].Value = math.Float64frombits(binary.LittleEndian.Uint64(buf[pos+4 : pos+12]))
	}
	return opts
}

// SampleInfo common sample header. Offset is the file position of the
// sampleInfo chunk itself, captured at write time.
type SampleInfo struct {
	Type        SampleType
	CaptureTime int64 // UnixNano.
	Offset      uint64
}

// Marshal sample info.
func (s SampleInfo) Marshal() []byte {
	out := make([]byte, SampleInfoSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(s.Type))
	binary.LittleEndian.PutUint64(out[4:12], uint64(s.CaptureTime))
	binary.LittleEndian.PutUint64(out[12:20], s.Offset)
	return out
}

// Unmarshal sample info.
func (s *SampleInfo) Unmarshal(buf []byte) {
	s.Type = SampleType(binary.LittleEndian.Uint32(buf[0:4]))
	s.CaptureTime = int64(binary.LittleEndian.Uint64(buf[4:12]))
	s.Offset = binary.LittleEndian.Uint64(buf[12:20])
}

// FrameInfo image frame metadata record.
type FrameInfo struct {
	Stream     int32
	Format     int32
	Width      int32
	Height     int32
	Stride     int32
	Framerate  int32
	Number     uint64 // Monotonically increasing per stream.
	Timestamp  int64  // Device timestamp.
	SystemTime int64  // Host timestamp.
}

// Marshal frame info.
func (f FrameInfo) Marshal() []byte {
	out := make([]byte, FrameInfoSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(f.Stream))
	binary.LittleEndian.PutUint32(out[4:8], uint32(f.Format))
	binary.LittleEndian.PutUint32(out[8:12], uint32(f.Width))
	binary.LittleEndian.PutUint32(out[12:16], uint32(f.Height))
	binary.LittleEndian.PutUint32(out[16:20], uint32(f.Stride))
	binary.LittleEndian.PutUint32(out[20:24], uint32(f.Framerate))
	binary.LittleEndian.PutUint64(out[24:32], f.Number)
	binary.LittleEndian.PutUint64(out[32:40], uint64(f.Timestamp))
	binary.LittleEndian.PutUint64(out[40:48], uint64(f.SystemTime))
	return out
}

// Unmarshal frame info.
func (f *FrameInfo) Unmarshal(buf []byte) {
	f.Stream = int32(binary.LittleEndian.Uint32(buf[0:4]))
	f.Format = int32(binary.LittleEndian.Uint32(buf[4:8]))
	f.Width = int32(binary.LittleEndian.Uint32(buf[8:12]))
	f.Height = int32(binary.LittleEndian.Uint32(buf[12:16]))
	f.Stride = int32(binary.LittleEndian.Uint32(buf[16:20]))
	f.Framerate = int32(binary.LittleEndian.Uint32(buf[20:24]))
	f.Number = binary.LittleEndian.Uint64(buf[24:32])
	f.Timestamp = int64(binary.LittleEndian.Uint64(buf[32:40]))
	f.SystemTime = int64(binary.LittleEndian.Uint64(buf[40:48]))
}

// Motion sources.
const (
	MotionSourceAccel int32 = 1
	MotionSourceGyro  int32 = 2
)

// MotionData a single motion reading.
type MotionData struct {
	Source    int32
	Timestamp int64
	Axes      [3]float32
}

// Marshal motion data.
func (m MotionData) Marshal() []byte {
	out := make([]byte, MotionDataSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(m.Source))
	binary.LittleEndian.PutUint64(out[4:12], uint64(m.Timestamp))
	binary.LittleEndian.PutUint32(out[12:16], math.Float32bits(m.Axes[0]))
	binary.LittleEndian.PutUint32(out[16:20], math.Float32bits(m.Axes[1]))
	binary.LittleEndian.PutUint32(out[20:24], math.Float32bits(m.Axes[2]))
	return out
}

// Unmarshal motion data.
func (m *MotionData) Unmarshal(buf []byte) {
	m.Source = int32(binary.LittleEndian.Uint32(buf[0:4]))
	m.Timestamp = int64(binary.LittleEndian.Uint64(buf[4:12]))
	m.Axes[0] = math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16]))
	m.Axes[1] = math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20]))
	m.Axes[2] = math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24]))
}

// TimeStampData a single timestamp event.
type TimeStampData struct {
	Source      int32
	FrameNumber uint64
	Timestamp   int64
}

// Marshal timestamp data.
func (t TimeStampData) Marshal() []byte {
	out := make([]byte, TimeStampDataSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(t.Source))
	binary.LittleEndian.PutUint64(out[4:12], t.FrameNumber)
	binary.LittleEndian.PutUint64(out[12:20], uint64(t.Timestamp))
	return out
}

// Unmarshal timestamp data.
func (t *TimeStampData) Unmarshal(buf []byte) {
	t.Source = int32(binary.LittleEndian.Uint32(buf[0:4]))
	t.FrameNumber = binary.LittleEndian.Uint64(buf[4:12])
	t.Timestamp = int64(binary.LittleEndian.Uint64(buf[12:20]))
}
