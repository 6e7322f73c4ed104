package models

import (
	"time"
)

// Chunk represents one indexed slice of a source document
type Chunk struct {
	// Identity
	ID         string `json:"id"`          // chunk_{uuid}
	DocumentID string `json:"document_id"` // doc_{uuid} of the owning document

	// Provenance
	Source   string `json:"source"`   // Filename or corpus title the chunk came from
	Position int    `json:"position"` // Zero-based order within the document

	// Content
	Text string `json:"text"`

	// Embedding vector; populated during index build
	Vector []float32 `json:"vector,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IndexManifest is the self-describing metadata record persisted alongside
// the base index chunks. A loaded artifact is usable only when the recorded
// model and dimension match the configured embedding provider.
type IndexManifest struct {
	ID         string    `json:"id" badgerhold:"key"` // Fixed manifest key
	EmbedModel string    `json:"embed_model"`         // Model that produced the vectors
	Dimension  int       `json:"dimension"`           // Vector dimensionality
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
