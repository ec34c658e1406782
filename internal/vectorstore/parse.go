package vectorstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// ParseEmbedding converts a stored embedding value into a float32 vector.
// It accepts the storage formats that appear in practice: native slices,
// pgvector values, flat-array text ("[0.1,0.2]") and Postgres array syntax
// ("{0.1,0.2}"). A nil value parses to a nil vector without error.
func ParseEmbedding(value any) ([]float32, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []float32:
		return v, nil
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, nil
	case pgvector.Vector:
		return v.Slice(), nil
	case string:
		return parseEmbeddingText(v)
	case []byte:
		return parseEmbeddingText(string(v))
	default:
		return nil, fmt.Errorf("unsupported embedding type %T", value)
	}
}

func parseEmbeddingText(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	// Postgres array syntax differs from the flat form only in braces.
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = "[" + s[1:len(s)-1] + "]"
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var out []float32
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out, nil
		}
		// JSON rejects values like "1." that Postgres may emit; fall
		// through to a manual split.
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return nil, nil
		}
		parts := strings.Split(inner, ",")
		out = make([]float32, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				return nil, fmt.Errorf("parsing embedding element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unrecognized embedding format %q", truncateForError(s))
}

func truncateForError(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
