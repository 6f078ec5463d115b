// Package record persists a live stream of sensor samples into a
// single seekable RSL container file.
package record

import (
	"sensrec/pkg/record/rslformat"
)

// StreamID identifies a capture stream.
type StreamID int32

// Streams.
const (
	StreamDepth StreamID = iota
	StreamColor
	StreamInfrared
	StreamInfrared2
	StreamFisheye
)

func (s StreamID) String() string {
	switch s {
	case StreamDepth:
		return "depth"
	case StreamColor:
		return "color"
	case StreamInfrared:
		return "infrared"
	case StreamInfrared2:
		return "infrared2"
	case StreamFisheye:
		return "fisheye"
	default:
		return "unknown"
	}
}

// PixelFormat identifies the pixel layout of a frame buffer.
type PixelFormat int32

// Pixel formats.
const (
	FormatZ16 PixelFormat = iota + 1
	FormatYUYV
	FormatRGB8
	FormatBGR8
	FormatRGBA8
	FormatBGRA8
	FormatY8
	FormatY16
	FormatRAW10
)

func (f PixelFormat) String() string {
	switch f {
	case FormatZ16:
		return "Z16"
	case FormatYUYV:
		return "YUYV"
	case FormatRGB8:
		return "RGB8"
	case FormatBGR8:
		return "BGR8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatY8:
		return "Y8"
	case FormatY16:
		return "Y16"
	case FormatRAW10:
		return "RAW10"
	default:
		return "unknown"
	}
}

// SampleBase common sample header. Offset is filled in when the sample
// is persisted.
type SampleBase struct {
	CaptureTime int64 // UnixNano.
	Offset      uint64
}

// Sample is a single reading produced by the capture pipeline. Exactly
// one of FrameSample, MotionSample and TimeStampSample.
type Sample interface {
	base() *SampleBase
	sampleType() rslformat.SampleType
}

// FrameSample an image frame. Data is owned exclusively by the sample
// until it has been written.
type FrameSample struct {
	Base       SampleBase
	Stream     StreamID
	Format     PixelFormat
	Width      int32
	Height     int32
	Stride     int32
	Framerate  int32
	Timestamp  int64 // Device timestamp.
	SystemTime int64
	Number     uint64 // Monotonically increasing per stream.
	Data       []byte
}

func (s *FrameSample) base() *SampleBase { return &s.Base }

func (s *FrameSample) sampleType() rslformat.SampleType {
	return rslformat.SampleTypeFrame
}

func (s *FrameSample) frameInfo() rslformat.FrameInfo {
	return rslformat.FrameInfo{
		Stream:     int32(s.Stream),
		Format:     int32(s.Format),
		Width:      s.Width,
		Height:     s.Height,
		Stride:     s.Stride,
		Framerate:  s.Framerate,
		Number:     s.Number,
		Timestamp:  s.Timestamp,
		SystemTime: s.SystemTime,
	}
}

// rawSize the size of the raw pixel buffer.
func (s *FrameSample) rawSize() int {
	return int(s.Stride * s.Height)
}

// MotionSample a single motion reading.
type MotionSample struct {
	Base   SampleBase
	Stream StreamID
	Data   rslformat.MotionData
}

func (s *MotionSample) base() *SampleBase { return &s.Base }

func (s *MotionSample) sampleType() rslformat.SampleType {
	return rslformat.SampleTypeMotion
}

// TimeStampSample a single timestamp event.
type TimeStampSample struct {
	Base   SampleBase
	Stream StreamID
	Data   rslformat.TimeStampData
}

func (s *TimeStampSample) base() *SampleBase { return &s.Base }

func (s *TimeStampSample) sampleType() rslformat.SampleType {
	return rslformat.SampleTypeTimeStamp
}
