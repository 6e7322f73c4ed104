// -----------------------------------------------------------------------
// Counsel index builder - embeds a document corpus into the base index
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/models"
	"github.com/lexforge/counsel/internal/services/embeddings"
	"github.com/lexforge/counsel/internal/services/extract"
	"github.com/lexforge/counsel/internal/services/ingest"
	badgerstore "github.com/lexforge/counsel/internal/storage/badger"
	"github.com/lexforge/counsel/internal/vectorindex"
)

// corpusManifest lists the documents to embed into the base index
type corpusManifest struct {
	Documents []corpusDocument `yaml:"documents"`
}

type corpusDocument struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
}

var (
	configFile  = flag.String("config", "", "Configuration file path")
	corpusFile  = flag.String("corpus", "corpus.yaml", "Corpus manifest listing documents to index")
	outputPath  = flag.String("out", "", "Index output path (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("counsel-index version %s\n", common.GetVersion())
		os.Exit(0)
	}

	var configFiles []string
	if *configFile != "" {
		configFiles = append(configFiles, *configFile)
	} else if _, err := os.Stat("counsel.toml"); err == nil {
		configFiles = append(configFiles, "counsel.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *outputPath != "" {
		config.Index.Path = *outputPath
	}

	logger := common.InitLogger(config)

	if err := run(config, logger); err != nil {
		logger.Fatal().Err(err).Msg("Index build failed")
		os.Exit(1)
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	manifest, err := loadManifest(*corpusFile)
	if err != nil {
		return err
	}
	if len(manifest.Documents) == 0 {
		return fmt.Errorf("corpus manifest %s lists no documents", *corpusFile)
	}

	embedder, err := embeddings.NewService(&config.Gemini, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embeddings: %w", err)
	}

	extractor := extract.NewService(logger)
	ctx := context.Background()

	// Chunk every document first so embedding failures surface before any
	// provider quota is spent.
	var chunks []models.Chunk
	position := 0
	for _, doc := range manifest.Documents {
		data, err := os.ReadFile(doc.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", doc.Path, err)
		}

		filename := filepath.Base(doc.Path)
		text, err := extractor.Extract(ctx, filename, data)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", doc.Path, err)
		}

		pieces, err := ingest.Chunk(text, config.Ingest.ChunkSize, config.Ingest.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("failed to chunk %s: %w", doc.Path, err)
		}

		source := doc.Title
		if source == "" {
			source = filename
		}

		documentID := common.NewDocumentID()
		now := time.Now()
		for _, piece := range pieces {
			chunks = append(chunks, models.Chunk{
				ID:         common.NewChunkID(),
				DocumentID: documentID,
				Source:     source,
				Position:   position,
				Text:       piece,
				CreatedAt:  now,
			})
			position++
		}

		logger.Info().
			Str("document", doc.Path).
			Int("chunks", len(pieces)).
			Msg("Document chunked")
	}

	logger.Info().
		Int("documents", len(manifest.Documents)).
		Int("chunks", len(chunks)).
		Str("embed_model", config.Gemini.EmbedModel).
		Msg("Embedding corpus")

	start := time.Now()
	idx, err := vectorindex.Build(ctx, chunks, embedder)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	db, err := badgerstore.NewBadgerDB(logger, config.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer db.Close()

	if err := badgerstore.NewIndexStorage(db, logger).SaveIndex(idx); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}

	logger.Info().
		Int("chunks", idx.Len()).
		Int("dimension", idx.Dimension()).
		Str("path", config.Index.Path).
		Dur("duration", time.Since(start)).
		Msg("Base index written")
	return nil
}

func loadManifest(path string) (*corpusManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus manifest: %w", err)
	}

	var manifest corpusManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse corpus manifest: %w", err)
	}
	return &manifest, nil
}
