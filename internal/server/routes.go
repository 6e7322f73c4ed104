package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Chat (RAG over the session's index)
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/vision", s.app.VisionHandler.ChatVisionHandler)

	// API routes - Documents
	mux.HandleFunc("/api/documents/upload", s.app.DocumentHandler.UploadHandler)

	// API routes - Sessions
	mux.HandleFunc("/api/sessions/reset", s.app.SessionHandler.ResetHandler)

	// API routes - Transcription
	mux.HandleFunc("/api/transcribe", s.app.TranscribeHandler.TranscribeHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
