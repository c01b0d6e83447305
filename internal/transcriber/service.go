// Package transcriber drives the end-to-end transcription flow: splitting
// the audio, dispatching each chunk to the model, normalizing the output,
// re-basing chunk timestamps onto the absolute timeline and merging the
// results.
package transcriber

import (
	"context"
	"time"

	"github.com/Yuki-bach/ditationable/internal/audio"
	"github.com/Yuki-bach/ditationable/models"
)

// ProgressFunc receives pipeline milestones: the stage name and the fraction
// of that stage completed, in (0, 1]. Invoked synchronously on the calling
// goroutine; there is no background progress channel.
type ProgressFunc func(stage string, fraction float64)

// Request bundles everything one transcription run needs. The audio has
// already been written to a local file by the HTTP boundary.
type Request struct {
	AudioPath  string
	MIMEType   string
	Options    models.TranscriptionOptions
	OnProgress ProgressFunc
}

// Service is the transcription capability consumed by the HTTP boundary.
type Service interface {
	Transcribe(ctx context.Context, req Request) (*models.TranscriptionResult, error)
	ValidateKey(ctx context.Context, apiKey string) bool
}

// Provider is one transcription model call surface, bound to a credential.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, systemPrompt string, speakerCount int) (string, error)
	Validate(ctx context.Context) bool
}

// ProviderFactory builds a Provider for a caller-supplied credential. A
// fresh Provider is constructed per request; credentials are never shared
// across requests.
type ProviderFactory func(apiKey string) Provider

// Splitter produces the ordered chunk sequence for an audio asset.
type Splitter interface {
	Split(ctx context.Context, audioPath string, maxDuration time.Duration, onProgress audio.ProgressFunc) ([]audio.Segment, func(), error)
}
