// -----------------------------------------------------------------------
// Ingest Service - Uploaded document to session index pipeline
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/models"
	"github.com/lexforge/counsel/internal/services/sessions"
	"github.com/lexforge/counsel/internal/vectorindex"
)

// Service runs the upload pipeline: extract, chunk, embed, index, and
// install the result as the session's active index. The pipeline is
// all-or-nothing: any failure leaves the session's prior index untouched,
// because the registry is only written after a successful build.
type Service struct {
	extractor    interfaces.TextExtractor
	embedder     interfaces.EmbeddingService
	registry     *sessions.Registry
	chunkSize    int
	chunkOverlap int
	logger       arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.IngestService = (*Service)(nil)

// NewService creates a new ingest service
func NewService(
	extractor interfaces.TextExtractor,
	embedder interfaces.EmbeddingService,
	registry *sessions.Registry,
	chunkSize, chunkOverlap int,
	logger arbor.ILogger,
) *Service {
	return &Service{
		extractor:    extractor,
		embedder:     embedder,
		registry:     registry,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// IngestDocument extracts, chunks, embeds, and indexes the document, then
// installs the new index for the session.
func (s *Service) IngestDocument(ctx context.Context, sessionID, filename string, data []byte) (*interfaces.IngestResult, error) {
	start := time.Now()

	text, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}

	pieces, err := Chunk(text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk %s: %w", filename, err)
	}

	documentID := common.NewDocumentID()
	now := time.Now()
	chunks := make([]models.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = models.Chunk{
			ID:         common.NewChunkID(),
			DocumentID: documentID,
			Source:     filename,
			Position:   i,
			Text:       piece,
			CreatedAt:  now,
		}
	}

	idx, err := vectorindex.Build(ctx, chunks, s.embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to build index for %s: %w", filename, err)
	}

	// Only now does the session see the new index
	s.registry.Set(sessionID, idx)

	s.logger.Info().
		Str("session_id", sessionID).
		Str("document_id", documentID).
		Str("filename", filename).
		Int("chunks", len(chunks)).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Document ingested")

	return &interfaces.IngestResult{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: len(chunks),
	}, nil
}
