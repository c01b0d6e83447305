// Package ffmpeg wraps the ffmpeg and ffprobe binaries used to inspect and
// slice audio assets before they are sent to the transcription model.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Engine invokes ffmpeg/ffprobe as subprocesses. Binary paths are
// configurable so deployments can pin specific builds.
type Engine struct {
	FFmpegPath  string
	FFprobePath string
}

// NewEngine returns an Engine using the given binary paths, falling back to
// the binaries on PATH when left empty.
func NewEngine(ffmpegPath, ffprobePath string) *Engine {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Engine{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// ffprobeOutput defines the structure for ffprobe JSON output relevant to
// duration. Only the format.duration field matters here.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration uses ffprobe to determine the duration of an audio file.
func (e *Engine) ProbeDuration(ctx context.Context, filePath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %v\nStderr: %s", err, stderr.String())
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return 0, fmt.Errorf("error unmarshalling ffprobe output: %v\nOutput: %s", err, out.String())
	}

	if probed.Format.Duration == "" {
		return 0, fmt.Errorf("could not retrieve duration from ffprobe output\nOutput: %s", out.String())
	}

	durationFloat, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration string %q: %v", probed.Format.Duration, err)
	}

	return time.Duration(durationFloat * float64(time.Second)), nil
}

// ExtractSegment cuts [start, start+duration) from inputFile into outputFile,
// re-encoding to mono 16 kHz PCM WAV. The transcription model expects that
// normalized format, so no codec-copy shortcut is taken here.
func (e *Engine) ExtractSegment(ctx context.Context, inputFile, outputFile string, start, duration time.Duration) error {
	startSeconds := fmt.Sprintf("%.3f", start.Seconds())
	durationSeconds := fmt.Sprintf("%.3f", duration.Seconds())

	cmd := exec.CommandContext(ctx, e.FFmpegPath,
		"-y", // Overwrite output file if it exists
		"-i", inputFile,
		"-ss", startSeconds,
		"-t", durationSeconds,
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputFile,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg -ss failed: %v\nStderr: %s", err, stderr.String())
	}

	return nil
}
