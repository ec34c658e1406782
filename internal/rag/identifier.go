package rag

import "regexp"

// IdentifierKind classifies a numeric token found in a query.
type IdentifierKind string

const (
	// IdentifierFull is a complete product code, such as an EAN-13 barcode.
	IdentifierFull IdentifierKind = "full"
	// IdentifierPartial is a code fragment long enough to be meaningful on
	// its own.
	IdentifierPartial IdentifierKind = "partial"
	// IdentifierShort is a short numeric token, such as an internal SKU
	// suffix. Too short to trust alone, still worth an exact lookup.
	IdentifierShort IdentifierKind = "short"
)

// Identifier is one numeric token extracted from a user query.
type Identifier struct {
	Value string
	Kind  IdentifierKind
}

// Word boundaries keep a 13-digit code from also matching as a partial.
var (
	fullCodeRe    = regexp.MustCompile(`\b\d{13}\b`)
	partialCodeRe = regexp.MustCompile(`\b\d{5,12}\b`)
	shortCodeRe   = regexp.MustCompile(`\b\d{4}\b`)
)

// DetectIdentifiers extracts numeric identifiers from a query, most
// specific classification first. Each distinct value appears once: a token
// that matches the full-code pattern is never reported again as partial or
// short.
func DetectIdentifiers(query string) []Identifier {
	seen := make(map[string]bool)
	var out []Identifier

	add := func(values []string, kind IdentifierKind) {
		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, Identifier{Value: v, Kind: kind})
		}
	}

	add(fullCodeRe.FindAllString(query, -1), IdentifierFull)
	add(partialCodeRe.FindAllString(query, -1), IdentifierPartial)
	add(shortCodeRe.FindAllString(query, -1), IdentifierShort)

	return out
}

// patterns returns the lookup substrings for a set of identifiers.
func patterns(ids []Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Value
	}
	return out
}
