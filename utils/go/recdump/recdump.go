// Package recdump is a script for inspecting recording containers. It
// prints every chunk and verifies that frame payloads decode to their
// declared size.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"sensrec/pkg/record/compression"
	"sensrec/pkg/record/rslformat"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: %v <recording.rsl>", os.Args[0]) //nolint:goerr113
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer file.Close()

	r, header, err := rslformat.NewReader(file)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	fmt.Printf("version: %v\n", rslformat.Version)
	fmt.Printf("streams: %v\n", header.StreamCount)
	fmt.Printf("coordinate system: %v\n", header.CoordinateSystem)
	fmt.Printf("first frame offset: %v\n", header.FirstFrameOffset)

	compressions := map[int32]rslformat.CompressionType{}
	var pendingFrame *rslformat.FrameInfo

	for {
		chunk, err := r.ReadChunk()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read chunk: %w", err)
		}

		switch chunk.Header.ID {
		case rslformat.ChunkDeviceInfo:
			var info rslformat.DeviceInfo
			info.Unmarshal(chunk.Payload)
			fmt.Printf("device: name=%q serial=%q firmware=%q\n",
				info.Name, info.Serial, info.Firmware)

		case rslformat.ChunkSwInfo:
			var info rslformat.SwInfo
			info.Unmarshal(chunk.Payload)
			fmt.Printf("sw: sdk=%v driver=%v\n", info.SDK, info.Driver)

		case rslformat.ChunkCapabilities:
			fmt.Printf("capabilities: %v\n",
				rslformat.UnmarshalCapabilities(chunk.Payload))

		case rslformat.ChunkMotionIntrinsics:
			fmt.Println("motion intrinsics")

		case rslformat.ChunkStreamInfo:
			infos, err := rslformat.StreamInfos(chunk.Payload)
			if err != nil {
				return fmt.Errorf("parse stream infos: %w", err)
			}
			for _, info := range infos {
				compressions[info.Stream] = info.Compression
				fmt.Printf(
					"stream %v: compression=%v frames=%v format=%v %vx%v @%vfps\n",
					info.Stream, info.Compression, info.FrameCount,
					info.Profile.Format, info.Profile.Width,
					info.Profile.Height, info.Profile.Framerate)
			}

		case rslformat.ChunkProperties:
			for _, opt := range rslformat.UnmarshalDeviceOptions(chunk.Payload) {
				fmt.Printf("option %v: %v\n", opt.Option, opt.Value)
			}

		case rslformat.ChunkSampleInfo:
			var info rslformat.SampleInfo
			info.Unmarshal(chunk.Payload)
			fmt.Printf("sample: type=%v captureTime=%v offset=%v\n",
				info.Type, info.CaptureTime, info.Offset)

		case rslformat.ChunkFrameInfo:
			var info rslformat.FrameInfo
			info.Unmarshal(chunk.Payload)
			pendingFrame = &info
			fmt.Printf("frame: stream=%v number=%v %vx%v stride=%v\n",
				info.Stream, info.Number, info.Width, info.Height, info.Stride)

		case rslformat.ChunkSampleData:
			if pendingFrame == nil {
				fmt.Printf("data: %v bytes\n", chunk.Header.Size)
				continue
			}
			if err := verifyFrame(compressions, pendingFrame, chunk.Payload); err != nil {
				return err
			}
			pendingFrame = nil

		default:
			fmt.Printf("unknown chunk %v: %v bytes\n",
				chunk.Header.ID, chunk.Header.Size)
		}
	}
}

// verifyFrame decodes a frame payload and checks the pixel count.
func verifyFrame(
	compressions map[int32]rslformat.CompressionType,
	info *rslformat.FrameInfo,
	payload []byte,
) error {
	rawSize := int(info.Stride * info.Height)

	codec, err := newCodec(compressions[info.Stream])
	if err != nil {
		return err
	}

	decoded, err := codec.Decode(payload, rawSize)
	if err != nil {
		return fmt.Errorf("decode frame %v: %w", info.Number, err)
	}
	if len(decoded) != rawSize {
		return fmt.Errorf("frame %v: decoded %v bytes, expected %v", //nolint:goerr113
			info.Number, len(decoded), rawSize)
	}

	fmt.Printf("data: %v bytes, decoded to %v bytes OK\n", len(payload), rawSize)
	return nil
}

func newCodec(ct rslformat.CompressionType) (compression.Codec, error) {
	switch ct {
	case rslformat.CompressionLZ4:
		return compression.NewLZ4Codec(0), nil
	case rslformat.CompressionZstd:
		return compression.NewZstdCodec(0)
	default:
		return compression.NoneCodec{}, nil
	}
}
