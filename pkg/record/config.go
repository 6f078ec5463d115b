package record

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"sensrec/pkg/record/compression"
	"sensrec/pkg/record/rslformat"
)

// Versions written into the software info chunk.
var (
	SDKVersion    = rslformat.SwVersion{Major: 0, Minor: 9, Patch: 0}
	DriverVersion = rslformat.SwVersion{Major: 1, Minor: 12, Patch: 1}
)

// StreamProfile static per-stream configuration, immutable for the
// recording's lifetime.
type StreamProfile struct {
	Format    PixelFormat `yaml:"format"`
	Width     int32       `yaml:"width"`
	Height    int32       `yaml:"height"`
	Stride    int32       `yaml:"stride"`
	Framerate int32       `yaml:"framerate"`
}

func (p StreamProfile) diskProfile() rslformat.StreamProfile {
	return rslformat.StreamProfile{
		Format:    int32(p.Format),
		Width:     p.Width,
		Height:    p.Height,
		Framerate: p.Framerate,
	}
}

// RecordingConfig everything needed to configure a recording, supplied
// once by the capture pipeline.
type RecordingConfig struct {
	FilePath         string                       `yaml:"filePath"`
	Streams          map[StreamID]StreamProfile   `yaml:"streams"`
	Device           rslformat.DeviceInfo         `yaml:"device"`
	Capabilities     []rslformat.Capability       `yaml:"capabilities"`
	MotionIntrinsics rslformat.MotionIntrinsics   `yaml:"motionIntrinsics"`
	CoordinateSystem int32                        `yaml:"coordinateSystem"`
	Options          []rslformat.DeviceOption     `yaml:"options"`
	CompressionLevel compression.Level            `yaml:"compressionLevel"`
}

// LoadConfig reads a RecordingConfig from a yaml file.
func LoadConfig(path string) (*RecordingConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var config RecordingConfig
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &config, nil
}
