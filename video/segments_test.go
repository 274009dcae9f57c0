package video

import (
	"math"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name      string
		narration string
		want      []string
	}{
		{
			name:      "two sentences",
			narration: "Hi there. Run now!",
			want:      []string{"Hi there", "Run now!"},
		},
		{
			name:      "three terminators",
			narration: "One. Two! Three? Done.",
			want:      []string{"One", "Two", "Three", "Done."},
		},
		{
			name:      "no terminal punctuation",
			narration: "just one long breathless line",
			want:      []string{"just one long breathless line"},
		},
		{
			name:      "trailing whitespace fragments dropped",
			narration: "First.   Second.   ",
			want:      []string{"First", "Second."},
		},
		{
			name:      "empty input",
			narration: "   ",
			want:      nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.narration)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d sentences %v, want %d %v", len(got), got, len(tc.want), tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestClampDuration(t *testing.T) {
	if got := ClampDuration(40, 29.5); got != 29.5 {
		t.Errorf("ClampDuration(40, 29.5) = %v, want 29.5", got)
	}
	if got := ClampDuration(12.3, 29.5); got != 12.3 {
		t.Errorf("ClampDuration(12.3, 29.5) = %v, want 12.3", got)
	}
}

func TestPartitionSegmentsEvenSplit(t *testing.T) {
	sentences := SplitSentences("Hi there. Run now!")
	segments := PartitionSegments(sentences, 20)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != 10 {
		t.Errorf("segment 0 window = [%v, %v), want [0, 10)", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 10 || segments[1].End != 20 {
		t.Errorf("segment 1 window = [%v, %v), want [10, 20)", segments[1].Start, segments[1].End)
	}
}

func TestPartitionSegmentsCoverage(t *testing.T) {
	sentences := []string{"a", "b", "c", "d", "e", "f", "g"}
	duration := 29.5
	segments := PartitionSegments(sentences, duration)

	if len(segments) != len(sentences) {
		t.Fatalf("segment count %d != sentence count %d", len(segments), len(sentences))
	}
	if segments[0].Start != 0 {
		t.Errorf("first segment starts at %v, want 0", segments[0].Start)
	}
	if segments[len(segments)-1].End != duration {
		t.Errorf("last segment ends at %v, want %v", segments[len(segments)-1].End, duration)
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].Start != segments[i-1].End {
			t.Errorf("gap or overlap between segment %d and %d: %v vs %v",
				i-1, i, segments[i-1].End, segments[i].Start)
		}
	}
	for i, seg := range segments {
		width := seg.End - seg.Start
		if math.Abs(width-duration/float64(len(sentences))) > 1e-9 {
			t.Errorf("segment %d width %v deviates from even split", i, width)
		}
	}
}

func TestPartitionSegmentsEmpty(t *testing.T) {
	if got := PartitionSegments(nil, 10); got != nil {
		t.Errorf("expected nil for no sentences, got %v", got)
	}
	if got := PartitionSegments([]string{"a"}, 0); got != nil {
		t.Errorf("expected nil for zero duration, got %v", got)
	}
}
