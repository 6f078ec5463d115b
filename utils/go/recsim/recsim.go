// Package recsim is a script for exercising the recording engine
// without a physical sensor. It records synthetically generated frame
// and motion samples for a fixed duration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sensrec"
	"sensrec/pkg/record"
	"sensrec/pkg/record/rslformat"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configFlag := flag.String("config", "", "path to recording config.yaml")
	storageFlag := flag.String("storage", "./storage", "path to storage directory")
	durationFlag := flag.Duration("duration", 10*time.Second, "recording duration")
	flag.Parse()

	if *configFlag == "" {
		flag.Usage()
		return nil
	}

	config, err := record.LoadConfig(*configFlag)
	if err != nil {
		return err
	}

	engine := sensrec.NewEngine(sensrec.Options{
		StorageDir:     *storageFlag,
		MaxDiskUsageGB: 5,
		LogToStdout:    true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		return err
	}

	path, err := engine.StartRecording(*config)
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	engine.Logger.Info().Src("app").Msgf("recording to %v", path)

	for stream, profile := range config.Streams {
		go produceFrames(ctx, engine, stream, profile)
	}
	go produceMotion(ctx, engine)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case signal := <-stop:
		engine.Logger.Info().Src("app").Msgf("received %v, stopping", signal)
	case <-time.After(*durationFlag):
	}

	if err := engine.StopRecording(); err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}

	usage, err := engine.Storage.DiskUsage(0)
	if err != nil {
		return err
	}
	engine.Logger.Info().Src("app").Msgf("storage usage %v", usage.Formatted)

	status := engine.System.Status()
	engine.Logger.Info().Src("app").
		Msgf("cpu %v%% ram %v%%", status.CPUUsage, status.RAMUsage)

	cancel()
	engine.Wait()
	return nil
}

func produceFrames(
	ctx context.Context,
	engine *sensrec.Engine,
	stream record.StreamID,
	profile record.StreamProfile,
) {
	ticker := time.NewTicker(time.Second / time.Duration(profile.Framerate))
	defer ticker.Stop()

	var number uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			number++
			engine.RecordSample(synthFrame(stream, profile, number))
		}
	}
}

func synthFrame(
	stream record.StreamID,
	profile record.StreamProfile,
	number uint64,
) *record.FrameSample {
	now := time.Now()

	// A moving gradient, compressible but not constant.
	data := make([]byte, profile.Stride*profile.Height)
	for i := range data {
		data[i] = byte((uint64(i) + number) % 251)
	}

	return &record.FrameSample{
		Base:      record.SampleBase{CaptureTime: now.UnixNano()},
		Stream:    stream,
		Format:    profile.Format,
		Width:     profile.Width,
		Height:    profile.Height,
		Stride:    profile.Stride,
		Framerate: profile.Framerate,
		Timestamp: now.UnixMilli(),
		Number:    number,
		Data:      data,
	}
}

func produceMotion(ctx context.Context, engine *sensrec.Engine) {
	const motionHz = 200

	ticker := time.NewTicker(time.Second / motionHz)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			engine.RecordSample(&record.MotionSample{
				Base: record.SampleBase{CaptureTime: now.UnixNano()},
				Data: rslformat.MotionData{
					Source:    rslformat.MotionSourceAccel,
					Timestamp: now.UnixMilli(),
					Axes:      [3]float32{0, 0, 9.81},
				},
			})
		}
	}
}
