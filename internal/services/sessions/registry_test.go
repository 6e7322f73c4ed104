package sessions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/models"
	"github.com/lexforge/counsel/internal/vectorindex"
)

func indexWithChunk(t *testing.T, text string) *vectorindex.Index {
	t.Helper()

	idx := vectorindex.New("stub-embed", 3)
	require.NoError(t, idx.Add(models.Chunk{
		ID:     "chunk_" + text,
		Text:   text,
		Vector: []float32{1, 0, 0},
	}))
	return idx
}

func TestResolve_FallsBackToBase(t *testing.T) {
	base := indexWithChunk(t, "base corpus")
	registry := NewRegistry(base, arbor.NewLogger())

	assert.Same(t, base, registry.Resolve("unknown-session"))
	assert.Same(t, base, registry.Resolve(DefaultSessionID))
}

func TestResolve_EmptySessionIDUsesDefault(t *testing.T) {
	base := indexWithChunk(t, "base corpus")
	registry := NewRegistry(base, arbor.NewLogger())

	uploaded := indexWithChunk(t, "uploaded")
	registry.Set("", uploaded)

	assert.Same(t, uploaded, registry.Resolve(""))
	assert.Same(t, uploaded, registry.Resolve(DefaultSessionID))
}

func TestSet_ReplacesPriorUpload(t *testing.T) {
	base := indexWithChunk(t, "base corpus")
	registry := NewRegistry(base, arbor.NewLogger())

	first := indexWithChunk(t, "first upload")
	second := indexWithChunk(t, "second upload")

	registry.Set("s1", first)
	assert.Same(t, first, registry.Resolve("s1"))

	// Replace, not merge
	registry.Set("s1", second)
	assert.Same(t, second, registry.Resolve("s1"))

	// Other sessions unaffected
	assert.Same(t, base, registry.Resolve("s2"))
}

func TestReset(t *testing.T) {
	base := indexWithChunk(t, "base corpus")
	registry := NewRegistry(base, arbor.NewLogger())

	registry.Set("s1", indexWithChunk(t, "uploaded"))
	require.Equal(t, 1, registry.SessionCount())

	registry.Reset("s1")
	assert.Same(t, base, registry.Resolve("s1"))
	assert.Equal(t, 0, registry.SessionCount())

	// Idempotent
	registry.Reset("s1")
	assert.Same(t, base, registry.Resolve("s1"))
}

func TestNilBase(t *testing.T) {
	registry := NewRegistry(nil, arbor.NewLogger())

	assert.Nil(t, registry.Resolve("s1"))

	uploaded := indexWithChunk(t, "uploaded")
	registry.Set("s1", uploaded)
	assert.Same(t, uploaded, registry.Resolve("s1"))

	registry.Reset("s1")
	assert.Nil(t, registry.Resolve("s1"))
}
