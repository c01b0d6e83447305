package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Yuki-bach/ditationable/internal/audio"
	"github.com/Yuki-bach/ditationable/internal/normalize"
	"github.com/Yuki-bach/ditationable/internal/timestamp"
	"github.com/Yuki-bach/ditationable/models"
)

// DefaultMaxChunkDuration is the longest audio the provider handles in a
// single generation request in practice (9.5 hours). Files beyond it are
// split and transcribed chunk by chunk.
const DefaultMaxChunkDuration = 34200 * time.Second

// Progress stage names reported through Request.OnProgress.
const (
	StageSegmenting   = "segmenting"
	StageTranscribing = "transcribing"
)

// GeminiService is the one concrete Service implementation. Chunks are
// processed strictly sequentially so progress reporting and chunk cleanup
// stay deterministic; concurrency across distinct requests is the transport
// layer's business.
type GeminiService struct {
	logger      *logrus.Logger
	splitter    Splitter
	newProvider ProviderFactory
	maxChunk    time.Duration
}

// NewGeminiService wires the orchestrator from its collaborators. A
// maxChunk of zero falls back to DefaultMaxChunkDuration.
func NewGeminiService(logger *logrus.Logger, splitter Splitter, factory ProviderFactory, maxChunk time.Duration) *GeminiService {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunkDuration
	}
	return &GeminiService{
		logger:      logger,
		splitter:    splitter,
		newProvider: factory,
		maxChunk:    maxChunk,
	}
}

// Transcribe runs the full pipeline for one request. On any unrecoverable
// error the whole request fails; no partial transcript is returned. Chunk
// workspaces are released on every exit path.
func (s *GeminiService) Transcribe(ctx context.Context, req Request) (*models.TranscriptionResult, error) {
	speakerCount := req.Options.SpeakerCount
	if speakerCount < 1 {
		speakerCount = 1
	}

	segments, cleanup, err := s.splitter.Split(ctx, req.AudioPath, s.maxChunk, func(fraction float64) {
		if req.OnProgress != nil {
			req.OnProgress(StageSegmenting, fraction)
		}
	})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	s.logger.WithFields(logrus.Fields{
		"chunks": len(segments),
		"mime":   req.MIMEType,
	}).Info("Audio prepared for transcription")

	provider := s.newProvider(req.Options.APIKey)

	var merged []models.TranscriptSegment
	for i, seg := range segments {
		chunkSegments, err := s.transcribeChunk(ctx, provider, seg, req, speakerCount, len(segments) > 1)
		if err != nil {
			return nil, err
		}
		merged = append(merged, chunkSegments...)

		if req.OnProgress != nil {
			req.OnProgress(StageTranscribing, float64(i+1)/float64(len(segments)))
		}
	}

	totalSeconds := 0.0
	if len(segments) > 0 {
		totalSeconds = segments[len(segments)-1].EndSeconds
	}

	if merged == nil {
		merged = []models.TranscriptSegment{}
	}

	result := &models.TranscriptionResult{
		Segments: merged,
		Metadata: models.TranscriptionMetadata{
			Duration:     timestamp.Format(int(totalSeconds)),
			SpeakerCount: speakerCount,
			ProcessedAt:  time.Now().UTC().Format(time.RFC3339),
		},
	}

	s.logger.WithFields(logrus.Fields{
		"segments": len(result.Segments),
		"duration": result.Metadata.Duration,
	}).Info("Transcription completed")

	return result, nil
}

// transcribeChunk sends one chunk through the provider and the normalizer,
// re-basing timestamps by the chunk's start offset. Chunk files produced by
// splitting are released as soon as the model has seen them, error or not.
func (s *GeminiService) transcribeChunk(ctx context.Context, provider Provider, seg audio.Segment, req Request, speakerCount int, isChunked bool) ([]models.TranscriptSegment, error) {
	data, err := os.ReadFile(seg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading chunk %d: %v", audio.ErrSegmentation, seg.Index, err)
	}

	mimeType := req.MIMEType
	if isChunked {
		// Split chunks are re-encoded to WAV regardless of the source format.
		mimeType = "audio/wav"
		defer os.Remove(seg.Path)
	}

	raw, err := provider.Transcribe(ctx, data, mimeType, req.Options.SystemPrompt, speakerCount)
	if err != nil {
		return nil, err
	}

	chunkSegments := normalize.Normalize(raw)

	// The model counts every chunk from 00:00, so chunk-local timestamps are
	// shifted by the chunk's position in the original audio.
	if offset := int(seg.StartSeconds); offset > 0 {
		for i := range chunkSegments {
			chunkSegments[i].Timestamp = timestamp.Rebase(chunkSegments[i].Timestamp, offset)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"chunk":    seg.Index,
		"segments": len(chunkSegments),
	}).Debug("Chunk transcribed")

	return chunkSegments, nil
}

// ValidateKey checks a credential against the provider. It reports false on
// any failure and never returns an error.
func (s *GeminiService) ValidateKey(ctx context.Context, apiKey string) bool {
	return s.newProvider(apiKey).Validate(ctx)
}
