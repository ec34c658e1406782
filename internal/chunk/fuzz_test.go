package chunk

import (
	"strings"
	"testing"
)

// FuzzSplit verifies structural invariants of Split for arbitrary inputs:
// windows stay inside the normalized text, never exceed the (clamped)
// maximum size, advance monotonically, and carry non-empty trimmed content.
func FuzzSplit(f *testing.F) {
	f.Add("hello world", 100, 20)
	f.Add("a\r\nb\rc\nd", 5, 1)
	f.Add(strings.Repeat("word ", 200), 50, 10)
	f.Add("第一段。\n\n第二段。", 6, 2)
	f.Add("\x00\x01binary\xffgarbage", 10, 3)
	f.Add("", 0, -5)

	f.Fuzz(func(t *testing.T, text string, maxChars, overlap int) {
		// Keep parameters in a range that terminates quickly.
		if maxChars > 10_000 || maxChars < -10 || overlap > 10_000 || overlap < -10 {
			t.Skip()
		}

		pieces := Split(text, maxChars, overlap)

		// Replicate the parameter clamping to know the effective window size.
		effMax := maxChars
		if effMax <= 0 {
			effMax = DefaultMaxChars
		}

		total := len([]rune(Normalize(text)))
		prevStart := -1
		for i, p := range pieces {
			if p.Start < 0 || p.End > total || p.Start >= p.End {
				t.Fatalf("piece %d has invalid window [%d, %d) for text of %d runes", i, p.Start, p.End, total)
			}
			if p.End-p.Start > effMax {
				t.Fatalf("piece %d window size %d exceeds max %d", i, p.End-p.Start, effMax)
			}
			if p.Start <= prevStart {
				t.Fatalf("piece %d start %d does not advance past %d", i, p.Start, prevStart)
			}
			if strings.TrimSpace(p.Content) != p.Content || p.Content == "" {
				t.Fatalf("piece %d content not trimmed or empty: %q", i, p.Content)
			}
			prevStart = p.Start
		}

		if strings.TrimSpace(Normalize(text)) == "" && pieces != nil {
			t.Fatalf("whitespace-only input produced %d pieces", len(pieces))
		}
	})
}
