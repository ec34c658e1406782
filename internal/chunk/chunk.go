// Package chunk splits extracted document text into overlapping passages
// suitable for embedding and retrieval.
//
// Splitting is pure and deterministic: no I/O, no recoverable errors.
// Offsets are rune offsets into the normalized (LF line endings) text, so
// multi-byte characters are never cut in half.
package chunk

import (
	"strings"
)

// Piece is one passage carved from a source text. Start and End are rune
// offsets of the window in the normalized text; Content is the window text
// with leading/trailing whitespace trimmed.
type Piece struct {
	Content string
	Start   int
	End     int
}

// Defaults used when a caller passes non-positive sizes.
const (
	DefaultMaxChars = 1000
	DefaultOverlap  = 200
)

// charsPerToken is the fixed heuristic used by EstimateTokens.
const charsPerToken = 4

// EstimateTokens estimates the token count of text using a fixed
// characters-per-token heuristic. It is meant for budget-aware callers, not
// for splitting correctness.
func EstimateTokens(text string) int {
	n := len(strings.TrimSpace(text))
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// Normalize converts CRLF and bare CR line endings to LF.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Split carves text into windows of at most maxChars runes, each subsequent
// window starting overlap runes before the previous window's end. Window
// boundaries are moved backward to the nearest linguistic break point
// (paragraph break, then sentence end, then line break, then space) within a
// bounded lookback; if none is found the ideal offset is used verbatim.
//
// Empty or whitespace-only input yields nil. Input no longer than maxChars
// yields exactly one piece spanning the whole trimmed text.
func Split(text string, maxChars, overlap int) []Piece {
	maxChars, overlap = clampParams(maxChars, overlap)

	norm := Normalize(text)
	if strings.TrimSpace(norm) == "" {
		return nil
	}

	runes := []rune(norm)
	total := len(runes)

	if total <= maxChars {
		if p, ok := makePiece(runes, 0, total); ok {
			return []Piece{p}
		}
		return nil
	}

	var pieces []Piece
	start := 0
	for start < total {
		end := start + maxChars
		if end >= total {
			end = total
		} else {
			end = findBreak(runes, start, end)
		}

		if p, ok := makePiece(runes, start, end); ok {
			pieces = append(pieces, p)
		}

		if end >= total {
			break
		}

		next := end - overlap
		if next <= start {
			// Degenerate break placement must still advance the window.
			next = start + 1
		}
		start = next
	}

	return pieces
}

// SplitParagraphs splits on blank-line boundaries first, then re-chunks any
// paragraph longer than maxChars with Split, preserving overlap between the
// consecutive pieces of an oversized paragraph. Offsets remain relative to
// the whole normalized input.
func SplitParagraphs(text string, maxChars, overlap int) []Piece {
	maxChars, overlap = clampParams(maxChars, overlap)

	norm := Normalize(text)
	if strings.TrimSpace(norm) == "" {
		return nil
	}

	runes := []rune(norm)
	var pieces []Piece
	for _, span := range paragraphSpans(runes) {
		length := span.end - span.start
		if length <= maxChars {
			if p, ok := makePiece(runes, span.start, span.end); ok {
				pieces = append(pieces, p)
			}
			continue
		}
		for _, sub := range Split(string(runes[span.start:span.end]), maxChars, overlap) {
			pieces = append(pieces, Piece{
				Content: sub.Content,
				Start:   sub.Start + span.start,
				End:     sub.End + span.start,
			})
		}
	}
	return pieces
}

func clampParams(maxChars, overlap int) (int, int) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 2
	}
	return maxChars, overlap
}

// makePiece trims the window content; whitespace-only windows are dropped.
func makePiece(runes []rune, start, end int) (Piece, bool) {
	content := strings.TrimSpace(string(runes[start:end]))
	if content == "" {
		return Piece{}, false
	}
	return Piece{Content: content, Start: start, End: end}, true
}

// breakLookbackDivisor bounds how far findBreak scans backward from the
// ideal cut: a quarter of the window size.
const breakLookbackDivisor = 4

// findBreak scans backward from the ideal end offset for the best cut
// position, in priority order: paragraph break, sentence terminator followed
// by whitespace, line break, plain space. Returns end unchanged when no
// break point exists within the lookback.
func findBreak(runes []rune, start, end int) int {
	lookback := (end - start) / breakLookbackDivisor
	low := end - lookback
	if low <= start {
		low = start + 1
	}

	// Paragraph break: cut right after a blank line.
	for j := end; j > low; j-- {
		if runes[j-1] == '\n' && j >= 2 && runes[j-2] == '\n' {
			return j
		}
	}

	// Sentence terminator followed by whitespace: keep the terminator.
	for j := end; j > low; j-- {
		if isSentenceEnd(runes[j-1]) && j < len(runes) && isSpace(runes[j]) {
			return j
		}
	}

	// Line break.
	for j := end; j > low; j-- {
		if runes[j-1] == '\n' {
			return j
		}
	}

	// Plain space.
	for j := end; j > low; j-- {
		if runes[j-1] == ' ' {
			return j
		}
	}

	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n':
		return true
	}
	return false
}

type span struct {
	start, end int
}

// paragraphSpans returns the rune spans of text regions separated by blank
// lines. Whitespace-only regions are skipped.
func paragraphSpans(runes []rune) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(runes) {
		if runes[i] != '\n' {
			i++
			continue
		}
		// A newline followed by optional spaces/tabs and another newline
		// ends the current paragraph.
		j := i + 1
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
			j++
		}
		if j < len(runes) && runes[j] == '\n' {
			if strings.TrimSpace(string(runes[start:i])) != "" {
				spans = append(spans, span{start: start, end: i})
			}
			// Swallow the whole blank-line run.
			for j < len(runes) && (runes[j] == '\n' || runes[j] == ' ' || runes[j] == '\t') {
				j++
			}
			start = j
			i = j
			continue
		}
		i++
	}
	if start < len(runes) && strings.TrimSpace(string(runes[start:])) != "" {
		spans = append(spans, span{start: start, end: len(runes)})
	}
	return spans
}
