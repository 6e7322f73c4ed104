// -----------------------------------------------------------------------
// Application wiring - builds services and handlers from configuration
// -----------------------------------------------------------------------

package app

import (
	"errors"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/common"
	"github.com/lexforge/counsel/internal/handlers"
	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/services/chat"
	"github.com/lexforge/counsel/internal/services/embeddings"
	"github.com/lexforge/counsel/internal/services/extract"
	"github.com/lexforge/counsel/internal/services/ingest"
	"github.com/lexforge/counsel/internal/services/llm"
	"github.com/lexforge/counsel/internal/services/sessions"
	"github.com/lexforge/counsel/internal/services/transcribe"
	"github.com/lexforge/counsel/internal/services/vision"
	badgerstore "github.com/lexforge/counsel/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage for the persisted base index artifact
	IndexDB *badgerstore.BadgerDB

	// Session-scoped index registry
	SessionRegistry *sessions.Registry

	// Capability services. Any of these may be nil when its provider
	// failed to initialize; the owning handler reports that per request
	// instead of the process refusing to start.
	EmbeddingService     interfaces.EmbeddingService
	LLMService           interfaces.LLMService
	VisionService        interfaces.VisionService
	TranscriptionService interfaces.TranscriptionService

	ChatService   interfaces.ChatService
	IngestService interfaces.IngestService

	// Set when the store holds a base artifact that cannot be used
	// (model/dimension mismatch, corrupt store). Chat is disabled for the
	// process lifetime; answering without the configured corpus would be
	// silently wrong.
	baseIndexBroken bool

	// HTTP handlers
	ChatHandler       *handlers.ChatHandler
	DocumentHandler   *handlers.DocumentHandler
	SessionHandler    *handlers.SessionHandler
	VisionHandler     *handlers.VisionHandler
	TranscribeHandler *handlers.TranscribeHandler
	APIHandler        *handlers.APIHandler
}

// New initializes the application with all dependencies. Provider failures
// degrade the corresponding capability rather than aborting startup.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.initProviders()
	app.initIndex()
	app.initServices()
	app.initHandlers()

	logger.Info().
		Bool("chat", app.LLMService != nil && app.ChatService != nil).
		Bool("ingestion", app.EmbeddingService != nil).
		Bool("vision", app.VisionService != nil).
		Bool("transcription", app.TranscriptionService != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initProviders brings up each model capability independently so a missing
// API key or unreachable provider only disables that capability.
func (a *App) initProviders() {
	if embedSvc, err := embeddings.NewService(&a.Config.Gemini, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Embeddings unavailable, document ingestion disabled")
	} else {
		a.EmbeddingService = embedSvc
	}

	if llmSvc, err := llm.NewLLMService(a.Config, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Str("provider", string(a.Config.LLM.DefaultProvider)).Msg("LLM unavailable, chat disabled")
	} else {
		a.LLMService = llmSvc
	}

	if visionSvc, err := vision.NewService(&a.Config.Gemini, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Vision model unavailable, image queries disabled")
	} else {
		a.VisionService = visionSvc
	}

	if transcribeSvc, err := transcribe.NewService(&a.Config.Gemini, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Transcription unavailable, audio queries disabled")
	} else {
		a.TranscriptionService = transcribeSvc
	}
}

// initIndex opens the base index store and rebuilds the in-memory index.
// A fresh deployment with no artifact at all starts without a base corpus
// and chat answers with empty context. An artifact that exists but cannot
// be loaded (incompatible embedding model or dimension, corrupt store) is
// a real initialization failure and disables text chat for the process.
func (a *App) initIndex() {
	db, err := badgerstore.NewBadgerDB(a.Logger, a.Config.Index.Path)
	if err != nil {
		a.Logger.Error().Err(err).
			Str("path", a.Config.Index.Path).
			Msg("Base index store failed to open, disabling text chat")
		a.baseIndexBroken = true
		a.SessionRegistry = sessions.NewRegistry(nil, a.Logger)
		return
	}
	a.IndexDB = db

	indexStorage := badgerstore.NewIndexStorage(db, a.Logger)
	base, err := indexStorage.LoadIndex(a.Config.Gemini.EmbedModel, a.Config.Gemini.EmbedDimension)
	if err != nil {
		if errors.Is(err, badgerstore.ErrArtifactNotFound) {
			a.Logger.Warn().
				Str("path", a.Config.Index.Path).
				Msg("No base index artifact found, starting without base corpus")
		} else {
			a.Logger.Error().Err(err).
				Str("path", a.Config.Index.Path).
				Str("embed_model", a.Config.Gemini.EmbedModel).
				Int("dimension", a.Config.Gemini.EmbedDimension).
				Msg("Base index artifact failed to load, disabling text chat")
			a.baseIndexBroken = true
		}
		a.SessionRegistry = sessions.NewRegistry(nil, a.Logger)
		return
	}

	a.Logger.Info().
		Int("chunks", base.Len()).
		Str("embed_model", base.EmbedModel()).
		Int("dimension", base.Dimension()).
		Msg("Base index loaded")
	a.SessionRegistry = sessions.NewRegistry(base, a.Logger)
}

func (a *App) initServices() {
	// A broken base artifact leaves the chat handle nil; the handler
	// reports the fixed "not initialized" failure per request.
	if !a.baseIndexBroken {
		a.ChatService = chat.NewService(
			a.LLMService,
			a.EmbeddingService,
			a.SessionRegistry,
			a.Config.Retrieval.TopK,
			a.Config.Retrieval.MemoryWindow,
			a.Logger,
		)
	}

	// Ingestion needs the embedding provider; without it uploads are
	// rejected with a fixed error by the document handler.
	if a.EmbeddingService != nil {
		extractor := extract.NewService(a.Logger)
		a.IngestService = ingest.NewService(
			extractor,
			a.EmbeddingService,
			a.SessionRegistry,
			a.Config.Ingest.ChunkSize,
			a.Config.Ingest.ChunkOverlap,
			a.Logger,
		)
	}
}

func (a *App) initHandlers() {
	maxUpload := a.Config.Ingest.MaxUploadBytes

	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.IngestService, maxUpload, a.Logger)
	a.SessionHandler = handlers.NewSessionHandler(a.SessionRegistry, a.Logger)
	a.VisionHandler = handlers.NewVisionHandler(a.VisionService, maxUpload, a.Logger)
	a.TranscribeHandler = handlers.NewTranscribeHandler(a.TranscriptionService, maxUpload, a.Logger)
	a.APIHandler = handlers.NewAPIHandler(handlers.Capabilities{
		Chat:          a.LLMService != nil && a.ChatService != nil,
		Ingestion:     a.EmbeddingService != nil,
		Vision:        a.VisionService != nil,
		Transcription: a.TranscriptionService != nil,
	})
}

// Close releases provider clients and the index store.
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM client")
		}
	}

	if a.IndexDB != nil {
		if err := a.IndexDB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close index store")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
