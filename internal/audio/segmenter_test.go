package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"
	"time"
)

// fakeEngine is a MediaEngine that reports a fixed duration and writes a
// placeholder file per extraction. It records extraction calls so tests can
// assert on boundaries.
type fakeEngine struct {
	duration   time.Duration
	probeErr   error
	extractErr error
	failAt     int // extraction index to fail at; -1 disables
	extracted  []extractCall
}

type extractCall struct {
	start    time.Duration
	duration time.Duration
	out      string
}

func (f *fakeEngine) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.duration, nil
}

func (f *fakeEngine) ExtractSegment(ctx context.Context, inputPath, outputPath string, start, duration time.Duration) error {
	if f.failAt >= 0 && len(f.extracted) == f.failAt {
		if f.extractErr != nil {
			return f.extractErr
		}
		return errors.New("extraction blew up")
	}
	f.extracted = append(f.extracted, extractCall{start: start, duration: duration, out: outputPath})
	return os.WriteFile(outputPath, []byte("wav"), 0o644)
}

func newFake(duration time.Duration) *fakeEngine {
	return &fakeEngine{duration: duration, failAt: -1}
}

func TestSplitSingleSegment(t *testing.T) {
	engine := newFake(90 * time.Second)
	s := NewSegmenter(engine, t.TempDir())

	segs, cleanup, err := s.Split(context.Background(), "/audio/input.mp3", 600*time.Second, nil)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	defer cleanup()

	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	seg := segs[0]
	if seg.Path != "/audio/input.mp3" {
		t.Errorf("single segment should keep the original file, got %q", seg.Path)
	}
	if seg.StartSeconds != 0 || seg.Index != 0 {
		t.Errorf("single segment should start at 0 with index 0, got start=%v index=%d", seg.StartSeconds, seg.Index)
	}
	if seg.EndSeconds != 90 {
		t.Errorf("EndSeconds = %v, want 90", seg.EndSeconds)
	}
	if len(engine.extracted) != 0 {
		t.Errorf("no extraction (re-encoding) expected for a single segment, got %d", len(engine.extracted))
	}
}

func TestSplitChunkCountAndCoverage(t *testing.T) {
	tests := []struct {
		name      string
		duration  time.Duration
		max       time.Duration
		wantCount int
	}{
		{name: "exact multiple", duration: 1200 * time.Second, max: 600 * time.Second, wantCount: 2},
		{name: "remainder chunk", duration: 1500 * time.Second, max: 600 * time.Second, wantCount: 3},
		{name: "just over one chunk", duration: 601 * time.Second, max: 600 * time.Second, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFake(tt.duration)
			s := NewSegmenter(engine, t.TempDir())

			segs, cleanup, err := s.Split(context.Background(), "/audio/long.mp3", tt.max, nil)
			if err != nil {
				t.Fatalf("Split returned error: %v", err)
			}
			defer cleanup()

			if len(segs) != tt.wantCount {
				t.Fatalf("expected %d segments, got %d", tt.wantCount, len(segs))
			}

			// Contiguous, non-overlapping, covering [0, D) exactly.
			total := tt.duration.Seconds()
			maxSecs := tt.max.Seconds()
			for i, seg := range segs {
				if seg.Index != i {
					t.Errorf("segment %d has index %d", i, seg.Index)
				}
				wantStart := float64(i) * maxSecs
				if seg.StartSeconds != wantStart {
					t.Errorf("segment %d start = %v, want %v", i, seg.StartSeconds, wantStart)
				}
				wantEnd := math.Min(wantStart+maxSecs, total)
				if seg.EndSeconds != wantEnd {
					t.Errorf("segment %d end = %v, want %v", i, seg.EndSeconds, wantEnd)
				}
				if i > 0 && seg.StartSeconds != segs[i-1].EndSeconds {
					t.Errorf("segment %d does not start where segment %d ends", i, i-1)
				}
			}
			if last := segs[len(segs)-1]; last.EndSeconds != total {
				t.Errorf("final segment ends at %v, want %v", last.EndSeconds, total)
			}

			// Each chunk really exists until cleanup runs.
			for _, seg := range segs {
				if _, err := os.Stat(seg.Path); err != nil {
					t.Errorf("chunk file %q missing: %v", seg.Path, err)
				}
			}
		})
	}
}

func TestSplitProgressCallback(t *testing.T) {
	engine := newFake(1500 * time.Second)
	s := NewSegmenter(engine, t.TempDir())

	var fractions []float64
	_, cleanup, err := s.Split(context.Background(), "/audio/long.mp3", 600*time.Second, func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	defer cleanup()

	want := []float64{1.0 / 3, 2.0 / 3, 1}
	if len(fractions) != len(want) {
		t.Fatalf("got %d progress calls, want %d", len(fractions), len(want))
	}
	for i := range want {
		if math.Abs(fractions[i]-want[i]) > 1e-9 {
			t.Errorf("progress call %d = %v, want %v", i, fractions[i], want[i])
		}
	}
}

func TestSplitDecodeError(t *testing.T) {
	engine := newFake(0)
	engine.probeErr = fmt.Errorf("ffprobe failed")
	s := NewSegmenter(engine, t.TempDir())

	_, _, err := s.Split(context.Background(), "/audio/broken.mp3", 600*time.Second, nil)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestSplitExtractionFailureAbortsAndCleansUp(t *testing.T) {
	workDir := t.TempDir()
	engine := newFake(1800 * time.Second)
	engine.failAt = 1
	s := NewSegmenter(engine, workDir)

	_, _, err := s.Split(context.Background(), "/audio/long.mp3", 600*time.Second, nil)
	if !errors.Is(err, ErrSegmentation) {
		t.Fatalf("expected ErrSegmentation, got %v", err)
	}

	// The chunk extracted before the failure must have been released.
	entries, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatalf("reading work dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected work dir to be empty after failed split, found %d entries", len(entries))
	}
}

func TestSplitRejectsNonPositiveMaxDuration(t *testing.T) {
	s := NewSegmenter(newFake(time.Minute), t.TempDir())

	_, _, err := s.Split(context.Background(), "/audio/input.mp3", 0, nil)
	if !errors.Is(err, ErrSegmentation) {
		t.Fatalf("expected ErrSegmentation for zero max duration, got %v", err)
	}
}

func TestPlanSpans(t *testing.T) {
	spans := planSpans(1234, 600)
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[2].end != 1234 {
		t.Errorf("last span ends at %v, want 1234", spans[2].end)
	}
	if spans[2].start != 1200 {
		t.Errorf("last span starts at %v, want 1200", spans[2].start)
	}
}
