package models

// TranscriptSegment represents a single speaker-labeled, timestamped piece of
// a transcription. Timestamps are rendered as MM:SS, or HH:MM:SS once the
// absolute position passes the one-hour mark.
type TranscriptSegment struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// TranscriptionMetadata carries request-level information attached to a
// finished transcript.
type TranscriptionMetadata struct {
	// Duration is the total duration of the source audio, formatted like a
	// segment timestamp. Empty when the duration could not be determined.
	Duration string `json:"duration,omitempty"`
	// SpeakerCount echoes the caller's hint; it is not derived from the model.
	SpeakerCount int `json:"speakerCount"`
	// ProcessedAt is the RFC 3339 completion time, set once at the end of
	// orchestration.
	ProcessedAt string `json:"processedAt"`
}

// TranscriptionResult is the full outcome of one transcription request.
// Segments are ordered chronologically after chunk timestamps have been
// re-based onto the absolute timeline of the original asset.
type TranscriptionResult struct {
	Segments []TranscriptSegment   `json:"segments"`
	Metadata TranscriptionMetadata `json:"metadata"`
}

// TranscriptionOptions are the caller-supplied knobs for one request. The API
// key lives in process memory for the lifetime of the request only; it is
// never logged and never written to durable storage.
type TranscriptionOptions struct {
	APIKey       string
	SystemPrompt string
	SpeakerCount int
}
