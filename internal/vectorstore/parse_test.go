package vectorstore

import (
	"math"
	"testing"

	"github.com/pgvector/pgvector-go"
)

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    []float32
		wantErr bool
	}{
		{
			name:  "nil value",
			value: nil,
			want:  nil,
		},
		{
			name:  "float32 slice passthrough",
			value: []float32{0.1, 0.2, 0.3},
			want:  []float32{0.1, 0.2, 0.3},
		},
		{
			name:  "float64 slice converted",
			value: []float64{1, 2, 3},
			want:  []float32{1, 2, 3},
		},
		{
			name:  "pgvector value",
			value: pgvector.NewVector([]float32{0.5, -0.5}),
			want:  []float32{0.5, -0.5},
		},
		{
			name:  "flat array text",
			value: "[0.1,0.2,0.3]",
			want:  []float32{0.1, 0.2, 0.3},
		},
		{
			name:  "flat array text with spaces",
			value: " [1, -2, 3.5] ",
			want:  []float32{1, -2, 3.5},
		},
		{
			name:  "postgres array syntax",
			value: "{0.25,0.75}",
			want:  []float32{0.25, 0.75},
		},
		{
			name:  "byte slice",
			value: []byte("[4,5]"),
			want:  []float32{4, 5},
		},
		{
			name:  "empty text",
			value: "",
			want:  nil,
		},
		{
			name:  "empty array",
			value: "[]",
			want:  nil,
		},
		{
			name:    "garbage text",
			value:   "not a vector",
			wantErr: true,
		},
		{
			name:    "non-numeric element",
			value:   "[1,two,3]",
			wantErr: true,
		},
		{
			name:    "unsupported type",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmbedding(tt.value)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEmbedding failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d elements, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("element %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseEmbedding_RoundTrip(t *testing.T) {
	original := []float32{0.123, -4.56, 7.89, 0}

	text := pgvector.NewVector(original).String()
	parsed, err := ParseEmbedding(text)
	if err != nil {
		t.Fatalf("ParseEmbedding failed: %v", err)
	}

	if len(parsed) != len(original) {
		t.Fatalf("got %d elements, want %d", len(parsed), len(original))
	}
	for i := range parsed {
		if math.Abs(float64(parsed[i]-original[i])) > 1e-5 {
			t.Errorf("element %d = %v, want %v", i, parsed[i], original[i])
		}
	}
}
