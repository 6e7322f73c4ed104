package badger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lexforge/counsel/internal/models"
	"github.com/lexforge/counsel/internal/vectorindex"
)

// baseManifestID is the fixed key of the artifact's metadata record
const baseManifestID = "base"

var (
	// ErrArtifactNotFound indicates the store holds no index manifest
	ErrArtifactNotFound = errors.New("index artifact not found")

	// ErrArtifactMismatch indicates the persisted artifact was built with a
	// different embedding model or dimension than the configured provider
	ErrArtifactMismatch = errors.New("index artifact incompatible with configured embedding provider")
)

// IndexStorage persists the base index artifact. The artifact is
// self-describing: a manifest record carries the embedding model name and
// vector dimensionality, and chunk records carry the text and vectors.
type IndexStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIndexStorage creates a new IndexStorage instance
func NewIndexStorage(db *BadgerDB, logger arbor.ILogger) *IndexStorage {
	return &IndexStorage{
		db:     db,
		logger: logger,
	}
}

// SaveIndex replaces the persisted artifact with the given index
func (s *IndexStorage) SaveIndex(idx *vectorindex.Index) error {
	if err := s.db.Store().DeleteMatching(&models.Chunk{}, nil); err != nil {
		return fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	chunks := idx.Chunks()
	for i := range chunks {
		if err := s.db.Store().Upsert(chunks[i].ID, &chunks[i]); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunks[i].ID, err)
		}
	}

	manifest := &models.IndexManifest{
		ID:         baseManifestID,
		EmbedModel: idx.EmbedModel(),
		Dimension:  idx.Dimension(),
		ChunkCount: idx.Len(),
		CreatedAt:  time.Now(),
	}
	if err := s.db.Store().Upsert(manifest.ID, manifest); err != nil {
		return fmt.Errorf("failed to save index manifest: %w", err)
	}

	s.logger.Info().
		Str("embed_model", manifest.EmbedModel).
		Int("dimension", manifest.Dimension).
		Int("chunks", manifest.ChunkCount).
		Msg("Index artifact saved")

	return nil
}

// LoadIndex reads the persisted artifact and rebuilds the in-memory index.
// Fails when no manifest exists or when the recorded model or dimension
// disagree with the supplied provider parameters.
func (s *IndexStorage) LoadIndex(embedModel string, dimension int) (*vectorindex.Index, error) {
	var manifest models.IndexManifest
	if err := s.db.Store().Get(baseManifestID, &manifest); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read index manifest: %w", err)
	}

	if manifest.EmbedModel != embedModel {
		return nil, fmt.Errorf("%w: artifact built with model %q, configured model is %q",
			ErrArtifactMismatch, manifest.EmbedModel, embedModel)
	}
	if manifest.Dimension != dimension {
		return nil, fmt.Errorf("%w: artifact has %d dimensions, configured dimension is %d",
			ErrArtifactMismatch, manifest.Dimension, dimension)
	}

	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, nil); err != nil {
		return nil, fmt.Errorf("failed to read index chunks: %w", err)
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Position < chunks[j].Position
	})

	idx := vectorindex.New(manifest.EmbedModel, manifest.Dimension)
	for i := range chunks {
		if err := idx.Add(chunks[i]); err != nil {
			return nil, fmt.Errorf("failed to restore chunk %s: %w", chunks[i].ID, err)
		}
	}

	if idx.Len() != manifest.ChunkCount {
		s.logger.Warn().
			Int("expected", manifest.ChunkCount).
			Int("loaded", idx.Len()).
			Msg("Index artifact chunk count disagrees with manifest")
	}

	s.logger.Info().
		Str("embed_model", manifest.EmbedModel).
		Int("dimension", manifest.Dimension).
		Int("chunks", idx.Len()).
		Msg("Index artifact loaded")

	return idx, nil
}
