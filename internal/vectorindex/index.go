// -----------------------------------------------------------------------
// Vector Index - In-memory brute-force cosine similarity index
// -----------------------------------------------------------------------

package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/models"
)

var (
	// ErrNoChunks indicates a build was attempted with no chunks
	ErrNoChunks = errors.New("no chunks to index")

	// ErrDimensionMismatch indicates a vector's length disagrees with the index
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Result pairs a chunk with its similarity score for a query
type Result struct {
	Chunk models.Chunk `json:"chunk"`
	Score float64      `json:"score"`
}

// Index holds embedded chunks and answers nearest-neighbor queries by
// exhaustive cosine similarity. An index is immutable once built, so
// concurrent queries need no locking.
type Index struct {
	embedModel string
	dimension  int
	chunks     []models.Chunk
}

// New returns an empty index accepting vectors of the given dimension
func New(embedModel string, dimension int) *Index {
	return &Index{
		embedModel: embedModel,
		dimension:  dimension,
	}
}

// Build embeds every chunk with the given embedder and constructs an index.
// Any embedding failure aborts the build.
func Build(ctx context.Context, chunks []models.Chunk, embedder interfaces.EmbeddingService) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	idx := New(embedder.ModelName(), embedder.Dimension())
	for i := range chunks {
		vector, err := embedder.GenerateEmbedding(ctx, chunks[i].Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %d: %w", i+1, len(chunks), err)
		}

		chunk := chunks[i]
		chunk.Vector = vector
		if err := idx.Add(chunk); err != nil {
			return nil, fmt.Errorf("failed to index chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	return idx, nil
}

// Add appends an embedded chunk to the index
func (idx *Index) Add(chunk models.Chunk) error {
	if len(chunk.Vector) != idx.dimension {
		return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
			ErrDimensionMismatch, chunk.ID, len(chunk.Vector), idx.dimension)
	}
	idx.chunks = append(idx.chunks, chunk)
	return nil
}

// Query returns up to k chunks ranked by descending cosine similarity to the
// query vector. Fewer than k results are returned only when the index holds
// fewer chunks. Equal scores keep insertion order.
func (idx *Index) Query(vector []float32, k int) ([]Result, error) {
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(vector), idx.dimension)
	}
	if k <= 0 || len(idx.chunks) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, 0, len(idx.chunks))
	for _, chunk := range idx.chunks {
		results = append(results, Result{
			Chunk: chunk,
			Score: CosineSimilarity(vector, chunk.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len returns the number of indexed chunks
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// EmbedModel returns the embedding model name the index was built with
func (idx *Index) EmbedModel() string {
	return idx.embedModel
}

// Dimension returns the vector dimensionality the index accepts
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Chunks returns the indexed chunks in insertion order.
// Used by artifact persistence; callers must not mutate the slice.
func (idx *Index) Chunks() []models.Chunk {
	return idx.chunks
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for a zero-magnitude vector.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
