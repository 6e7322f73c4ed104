package interfaces

import (
	"context"
)

// IngestResult summarizes a successful document ingestion
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// IngestService turns an uploaded document into a session index.
// Ingestion is all-or-nothing: on any failure the session keeps whatever
// index it had before the upload.
type IngestService interface {
	// IngestDocument extracts, chunks, embeds, and indexes the document,
	// then installs the new index as the session's active index.
	IngestDocument(ctx context.Context, sessionID, filename string, data []byte) (*IngestResult, error)
}
