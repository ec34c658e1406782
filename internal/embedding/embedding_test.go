package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

// mockProvider implements Provider for testing.
type mockProvider struct {
	err        error     // error to return
	shuffle    bool      // return results in reversed index order
	callCount  int       // number of CreateEmbeddings calls
	batchSizes []int     // size of each received batch
	lastTexts  []string  // texts of the most recent call
	dim        int       // vector dimensionality (default 3)
	short      bool      // return one fewer result than inputs
}

func (m *mockProvider) CreateEmbeddings(ctx context.Context, texts []string) ([]Embedding, error) {
	m.callCount++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.lastTexts = texts

	if m.err != nil {
		return nil, m.err
	}

	dim := m.dim
	if dim == 0 {
		dim = 3
	}

	n := len(texts)
	if m.short && n > 0 {
		n--
	}

	out := make([]Embedding, 0, n)
	for i := 0; i < n; i++ {
		vec := make([]float32, dim)
		// Encode the input index so ordering is verifiable after re-sort.
		vec[0] = float32(i)
		out = append(out, Embedding{Index: i, Vector: vec})
	}
	if m.shuffle {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func TestService_Embed(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		provErr   error
		wantErr   error
		wantClean string
	}{
		{
			name:      "plain text",
			text:      "hello world",
			wantClean: "hello world",
		},
		{
			name:      "whitespace collapsed and nul stripped",
			text:      "  hello\x00\t\n  world  ",
			wantClean: "hello world",
		},
		{
			name:    "empty text rejected",
			text:    "",
			wantErr: ErrEmptyText,
		},
		{
			name:    "whitespace-only rejected",
			text:    " \t\n ",
			wantErr: ErrEmptyText,
		},
		{
			name:    "nul-only rejected",
			text:    "\x00\x00",
			wantErr: ErrEmptyText,
		},
		{
			name:    "provider error wrapped",
			text:    "hello",
			provErr: errors.New("quota exceeded"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{err: tt.provErr}
			svc := New(provider, nil)

			vec, err := svc.Embed(context.Background(), tt.text)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if provider.callCount != 0 {
					t.Error("provider should not be called for invalid input")
				}
				return
			}

			if tt.provErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "embedding generation failed") {
					t.Errorf("provider error not wrapped: %v", err)
				}
				if !strings.Contains(err.Error(), "quota exceeded") {
					t.Errorf("original error lost: %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			if len(vec) == 0 {
				t.Fatal("expected a non-empty vector")
			}
			if provider.lastTexts[0] != tt.wantClean {
				t.Errorf("submitted %q, want %q", provider.lastTexts[0], tt.wantClean)
			}
		})
	}
}

func TestService_Embed_Truncation(t *testing.T) {
	provider := &mockProvider{}
	svc := New(provider, nil)

	long := strings.Repeat("a", MaxTextLength+500)
	if _, err := svc.Embed(context.Background(), long); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if got := len(provider.lastTexts[0]); got != MaxTextLength {
		t.Errorf("submitted %d characters, want %d", got, MaxTextLength)
	}
}

func TestService_EmbedBatch_SplitsAndPreservesOrder(t *testing.T) {
	provider := &mockProvider{shuffle: true}
	svc := New(provider, nil)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("text number %d", i)
	}

	vectors, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	// 150 texts with a 100-item provider limit means exactly 2 calls.
	if provider.callCount != 2 {
		t.Errorf("expected 2 provider calls, got %d", provider.callCount)
	}
	if len(provider.batchSizes) != 2 || provider.batchSizes[0] != 100 || provider.batchSizes[1] != 50 {
		t.Errorf("expected batches [100 50], got %v", provider.batchSizes)
	}

	if len(vectors) != 150 {
		t.Fatalf("expected 150 vectors, got %d", len(vectors))
	}

	// The mock encodes the within-batch index in component 0; after the
	// service re-sorts by provider index, order must match submission order.
	for i, vec := range vectors {
		want := float32(i % 100)
		if i >= 100 {
			want = float32(i - 100)
		}
		if vec[0] != want {
			t.Fatalf("vector %d out of order: component 0 = %v, want %v", i, vec[0], want)
		}
	}
}

func TestService_EmbedBatch_FiltersEmptyEntries(t *testing.T) {
	provider := &mockProvider{}
	svc := New(provider, nil)

	texts := []string{"first", "", "  ", "second", "\x00", "third"}
	vectors, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors for 3 non-empty texts, got %d", len(vectors))
	}
	if len(provider.lastTexts) != 3 {
		t.Errorf("provider received %d texts, want 3", len(provider.lastTexts))
	}
	if provider.lastTexts[0] != "first" || provider.lastTexts[2] != "third" {
		t.Errorf("filtered order wrong: %v", provider.lastTexts)
	}
}

func TestService_EmbedBatch_AllEmpty(t *testing.T) {
	provider := &mockProvider{}
	svc := New(provider, nil)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"", "  ", "\x00"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil for all-empty input, got %v", vectors)
	}
	if provider.callCount != 0 {
		t.Error("provider should not be called for all-empty input")
	}
}

func TestService_EmbedBatch_Errors(t *testing.T) {
	t.Run("provider error wrapped", func(t *testing.T) {
		provider := &mockProvider{err: errors.New("network down")}
		svc := New(provider, nil)

		_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "embedding generation failed") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("result count mismatch", func(t *testing.T) {
		provider := &mockProvider{short: true}
		svc := New(provider, nil)

		_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "got 2 vectors for 3 inputs") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr error
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{-1, -2, -3},
			want: -1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "zero vector yields zero",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "both empty",
			a:    []float32{},
			b:    []float32{},
			want: 0,
		},
		{
			name:    "dimension mismatch",
			a:       []float32{1, 2},
			b:       []float32{1, 2, 3},
			wantErr: ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CosineSimilarity failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("similarity = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("similarity must never be NaN")
			}
		})
	}
}
