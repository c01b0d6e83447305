// Package audio splits long audio assets into model-sized chunks. Files that
// fit within a single model request pass through untouched; longer files are
// cut into contiguous sub-clips re-encoded to the format the model expects.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDecode indicates the audio could not be decoded far enough to
	// determine its duration.
	ErrDecode = errors.New("audio could not be decoded")
	// ErrSegmentation indicates a chunk could not be extracted. The whole
	// request aborts; a partial transcript is never returned.
	ErrSegmentation = errors.New("audio segmentation failed")
)

// Segment is one bounded sub-clip of the original audio. Segments live for
// the duration of a single transcription request and are released through the
// cleanup function returned by Split.
type Segment struct {
	Path         string
	StartSeconds float64
	EndSeconds   float64
	Index        int
}

// MediaEngine is the subset of the ffmpeg engine the segmenter needs.
type MediaEngine interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	ExtractSegment(ctx context.Context, inputPath, outputPath string, start, duration time.Duration) error
}

// ProgressFunc receives the fraction of chunks extracted so far, in (0, 1].
// It is invoked synchronously after each extraction.
type ProgressFunc func(fraction float64)

// Segmenter decides whether an asset needs splitting and produces the
// ordered chunk sequence when it does.
type Segmenter struct {
	engine  MediaEngine
	workDir string
}

// NewSegmenter creates a Segmenter extracting chunks under workDir. An empty
// workDir falls back to the system temp directory.
func NewSegmenter(engine MediaEngine, workDir string) *Segmenter {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Segmenter{engine: engine, workDir: workDir}
}

// span is one planned chunk interval, in seconds.
type span struct {
	start float64
	end   float64
}

// planSpans computes the chunk boundaries for a file of totalSeconds cut into
// pieces of at most maxSeconds. Intervals are contiguous, non-overlapping and
// cover [0, totalSeconds) exactly.
func planSpans(totalSeconds, maxSeconds float64) []span {
	count := int(math.Ceil(totalSeconds / maxSeconds))
	spans := make([]span, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * maxSeconds
		spans = append(spans, span{
			start: start,
			end:   math.Min(start+maxSeconds, totalSeconds),
		})
	}
	return spans
}

// Split produces the ordered segments for audioPath given the maximum single
// chunk duration. The returned cleanup releases every transient buffer the
// split created and must be called on every exit path, error or not.
//
// When the asset fits in one chunk the original file is returned as-is, with
// no re-encoding, and cleanup is a no-op.
func (s *Segmenter) Split(ctx context.Context, audioPath string, maxDuration time.Duration, onProgress ProgressFunc) ([]Segment, func(), error) {
	noop := func() {}

	if maxDuration <= 0 {
		return nil, noop, fmt.Errorf("%w: max duration must be positive, got %s", ErrSegmentation, maxDuration)
	}

	total, err := s.engine.ProbeDuration(ctx, audioPath)
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if total <= maxDuration {
		seg := Segment{
			Path:         audioPath,
			StartSeconds: 0,
			EndSeconds:   total.Seconds(),
			Index:        0,
		}
		if onProgress != nil {
			onProgress(1)
		}
		return []Segment{seg}, noop, nil
	}

	spans := planSpans(total.Seconds(), maxDuration.Seconds())

	chunkDir := filepath.Join(s.workDir, "segments-"+uuid.NewString())
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return nil, noop, fmt.Errorf("%w: creating chunk directory: %v", ErrSegmentation, err)
	}
	cleanup := func() { os.RemoveAll(chunkDir) }

	segments := make([]Segment, 0, len(spans))
	for i, sp := range spans {
		outPath := filepath.Join(chunkDir, fmt.Sprintf("segment_%03d.wav", i))
		start := time.Duration(sp.start * float64(time.Second))
		length := time.Duration((sp.end - sp.start) * float64(time.Second))

		if err := s.engine.ExtractSegment(ctx, audioPath, outPath, start, length); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("%w: chunk %d: %v", ErrSegmentation, i, err)
		}

		segments = append(segments, Segment{
			Path:         outPath,
			StartSeconds: sp.start,
			EndSeconds:   sp.end,
			Index:        i,
		})

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(spans)))
		}
	}

	return segments, cleanup, nil
}
