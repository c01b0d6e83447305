// Package normalize turns raw model output into transcript segments. The
// preferred path parses the JSON shape the prompt asks for; when the model
// strays from it, a line-based state machine recovers what it can.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Yuki-bach/ditationable/models"
)

// structuredPayload is the JSON shape the system prompt requests.
type structuredPayload struct {
	Segments []models.TranscriptSegment `json:"segments"`
}

// Normalize parses raw model output into transcript segments. A missing
// "segments" key yields an empty slice, not an error. Structured-parse
// failure falls back to the heuristic scanner and never bubbles up.
func Normalize(raw string) []models.TranscriptSegment {
	text := stripCodeFences(raw)

	var payload structuredPayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		if payload.Segments == nil {
			return []models.TranscriptSegment{}
		}
		return payload.Segments
	}

	return scanFallback(raw)
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag, so fenced JSON still hits the structured path.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the rest of the fence line ("json", "JSON", ...).
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Scanner states for the degraded fallback path. Each line is scanned for a
// leading speaker token, then a timestamp, then accumulates remaining text.
const (
	stateSeekSpeaker = iota
	stateSeekTimestamp
	stateAccumulate
)

var (
	speakerPattern   = regexp.MustCompile(`(?i)^((?:speaker|person)\s*\d+|s\d+):?`)
	timestampPattern = regexp.MustCompile(`\[?(\d{1,2}:\d{2})\]?`)
)

// jsonNoise reports whether a line is pure JSON punctuation left over from a
// malformed structured response.
func jsonNoise(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "{", "}", "[", "]", `"`, ",", "},", "],":
		return true
	}
	return false
}

// scanFallback is the heuristic extractor for unstructured model output. It
// tracks the last-seen speaker and timestamp and joins all remaining text
// into a single segment. Multi-speaker structure is not reconstructed; this
// path trades fidelity for returning something rather than nothing.
func scanFallback(raw string) []models.TranscriptSegment {
	speaker := "Speaker 1"
	timestamp := "00:00"
	var pieces []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || jsonNoise(line) {
			continue
		}

		state := stateSeekSpeaker
		for state != stateAccumulate {
			switch state {
			case stateSeekSpeaker:
				if m := speakerPattern.FindStringSubmatch(line); m != nil {
					speaker = m[1]
					line = strings.TrimSpace(line[len(m[0]):])
				}
				state = stateSeekTimestamp
			case stateSeekTimestamp:
				if m := timestampPattern.FindStringSubmatch(line); m != nil {
					timestamp = m[1]
					line = strings.TrimSpace(strings.Replace(line, m[0], "", 1))
				}
				state = stateAccumulate
			}
		}

		if line != "" {
			pieces = append(pieces, line)
		}
	}

	if len(pieces) == 0 {
		return []models.TranscriptSegment{}
	}

	return []models.TranscriptSegment{{
		Speaker:   speaker,
		Timestamp: timestamp,
		Text:      strings.Join(pieces, " "),
	}}
}
