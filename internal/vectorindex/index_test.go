package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexforge/counsel/internal/models"
)

// stubEmbedder maps chunk text to fixed vectors for deterministic tests
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  string
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if s.failOn != "" && text == s.failOn {
		return nil, errors.New("embedding provider unavailable")
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

func (s *stubEmbedder) Dimension() int { return 3 }

func (s *stubEmbedder) IsAvailable(_ context.Context) bool { return true }

func chunksOf(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{
			ID:       fmt.Sprintf("chunk_%d", i),
			Position: i,
			Text:     t,
		}
	}
	return chunks
}

func TestBuild(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
	}}

	idx, err := Build(context.Background(), chunksOf("alpha", "beta"), embedder)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, "stub-embed", idx.EmbedModel())
	assert.Equal(t, 3, idx.Dimension())
}

func TestBuild_EmptyChunks(t *testing.T) {
	_, err := Build(context.Background(), nil, &stubEmbedder{})
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestBuild_EmbeddingFailureAborts(t *testing.T) {
	embedder := &stubEmbedder{failOn: "beta"}

	_, err := Build(context.Background(), chunksOf("alpha", "beta", "gamma"), embedder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider unavailable")
}

func TestQuery_RanksByCosineSimilarity(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"exact":      {1, 0, 0},
		"close":      {1, 1, 0},
		"orthogonal": {0, 0, 1},
	}}

	idx, err := Build(context.Background(), chunksOf("exact", "close", "orthogonal"), embedder)
	require.NoError(t, err)

	results, err := idx.Query([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact", results[0].Chunk.Text)
	assert.Equal(t, "close", results[1].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestQuery_KLargerThanIndex(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
	}}

	idx, err := Build(context.Background(), chunksOf("a", "b"), embedder)
	require.NoError(t, err)

	results, err := idx.Query([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQuery_TiesKeepInsertionOrder(t *testing.T) {
	idx := New("stub-embed", 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, idx.Add(models.Chunk{
			ID:       fmt.Sprintf("chunk_%d", i),
			Position: i,
			Text:     fmt.Sprintf("tied %d", i),
			Vector:   []float32{1, 0, 0},
		}))
	}

	results, err := idx.Query([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i, r.Chunk.Position)
	}
}

func TestQuery_DimensionMismatch(t *testing.T) {
	idx := New("stub-embed", 3)
	_, err := idx.Query([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	idx := New("stub-embed", 3)
	err := idx.Add(models.Chunk{ID: "chunk_bad", Vector: []float32{1, 0}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
