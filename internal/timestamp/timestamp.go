// Package timestamp handles the MM:SS / HH:MM:SS timestamps used throughout
// transcripts, including re-basing chunk-local timestamps onto the absolute
// timeline of the original audio.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a "MM:SS" or "HH:MM:SS" timestamp into total seconds.
func Parse(ts string) (int, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	total := 0
	for _, part := range parts {
		if part == "" {
			return 0, fmt.Errorf("malformed timestamp %q", ts)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed timestamp %q", ts)
		}
		total = total*60 + n
	}

	return total, nil
}

// Format renders a number of seconds as "MM:SS", switching to "HH:MM:SS" from
// one hour onward. Negative inputs are clamped to zero.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Rebase shifts a chunk-local timestamp by the chunk's start offset in the
// original audio. The input is returned unchanged when it cannot be parsed,
// so a single odd model timestamp does not fail the whole transcript.
func Rebase(ts string, offsetSeconds int) string {
	secs, err := Parse(ts)
	if err != nil {
		return ts
	}
	return Format(secs + offsetSeconds)
}
