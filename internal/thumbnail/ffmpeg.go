package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"time"

	// ffmpeg writes PNG frames to stdout.
	_ "image/png"

	"playlist-player/internal/logging"
)

// Extractor reads metadata and single frames from a video file.
type Extractor interface {
	Duration(ctx context.Context, path string) (float64, error)
	Frame(ctx context.Context, path string, at time.Duration) (image.Image, error)
}

// FFmpeg is the Extractor backed by the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// LookupFFmpeg locates ffmpeg and ffprobe on PATH.
func LookupFFmpeg() (*FFmpeg, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	logging.Debug("Using ffmpeg: %s, ffprobe: %s", ffmpegPath, ffprobePath)
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the container duration in seconds.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", probe.Format.Duration, err)
	}
	return d, nil
}

// Frame decodes the frame at offset at.
func (f *FFmpeg) Frame(ctx context.Context, path string, at time.Duration) (image.Image, error) {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
