package video

import (
	"regexp"
	"strings"
)

// Segment is one timed caption unit: a sentence and the half-open window
// [Start, End) during which it is shown.
type Segment struct {
	Text  string
	Start float64
	End   float64
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences splits narration on sentence-terminating punctuation
// followed by whitespace. Empty fragments are dropped. Non-empty narration
// always yields at least one sentence: text without terminal punctuation
// comes back whole.
func SplitSentences(narration string) []string {
	var sentences []string
	for _, part := range sentenceEnd.Split(narration, -1) {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	if len(sentences) == 0 {
		if whole := strings.TrimSpace(narration); whole != "" {
			sentences = append(sentences, whole)
		}
	}
	return sentences
}

// ClampDuration caps the effective video length at maxSec. Audio longer than
// the cap is truncated, never stretched.
func ClampDuration(audioSec, maxSec float64) float64 {
	if audioSec > maxSec {
		return maxSec
	}
	return audioSec
}

// PartitionSegments maps n sentences onto duration D as an even split:
// segment i occupies [i/n*D, (i+1)/n*D). The windows are contiguous,
// non-overlapping, and cover [0, D) exactly. The split is deliberately
// uniform rather than proportional to sentence length.
func PartitionSegments(sentences []string, duration float64) []Segment {
	n := len(sentences)
	if n == 0 || duration <= 0 {
		return nil
	}
	segments := make([]Segment, n)
	for i, text := range sentences {
		segments[i] = Segment{
			Text:  text,
			Start: float64(i) / float64(n) * duration,
			End:   float64(i+1) / float64(n) * duration,
		}
	}
	// Guard against float error on the last boundary.
	segments[n-1].End = duration
	return segments
}
