package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
	"github.com/lexforge/counsel/internal/services/chat"
	"github.com/lexforge/counsel/internal/services/extract"
	"github.com/lexforge/counsel/internal/services/ingest"
	"github.com/lexforge/counsel/internal/services/sessions"
)

// stubChatService returns a canned response or error
type stubChatService struct {
	lastReq  *interfaces.ChatRequest
	response *interfaces.ChatResponse
	err      error
}

func (s *stubChatService) Chat(_ context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubChatService) HealthCheck(_ context.Context) error { return s.err }

// stubIngestService returns a canned result or error
type stubIngestService struct {
	result *interfaces.IngestResult
	err    error
}

func (s *stubIngestService) IngestDocument(_ context.Context, _, filename string, _ []byte) (*interfaces.IngestResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &interfaces.IngestResult{DocumentID: "doc_test", Filename: filename, ChunkCount: 2}, nil
}

// stubVisionService echoes its prompt
type stubVisionService struct {
	err error
}

func (s *stubVisionService) AnswerImage(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "vision answer", nil
}

func (s *stubVisionService) ModelName() string { return "stub-vision" }

// stubTranscriptionService returns fixed text
type stubTranscriptionService struct {
	err error
}

func (s *stubTranscriptionService) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "spoken words", nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatHandler(t *testing.T) {
	svc := &stubChatService{response: &interfaces.ChatResponse{
		Answer:    "the answer",
		FollowUps: []string{"next question?"},
	}}
	handler := NewChatHandler(svc, arbor.NewLogger())

	payload := `{"question":"What is bail?","session_id":"s1","chat_history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "the answer", body["answer"])
	assert.Equal(t, []interface{}{"next question?"}, body["related_questions"])

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "s1", svc.lastReq.SessionID)
	assert.Len(t, svc.lastReq.History, 2)
}

func TestChatHandler_NonStandardHistoryRoles(t *testing.T) {
	svc := &stubChatService{response: &interfaces.ChatResponse{Answer: "ok", FollowUps: []string{}}}
	handler := NewChatHandler(svc, arbor.NewLogger())

	payload := `{"question":"q","chat_history":[{"role":"user","content":"hi"},{"role":"ai","content":"hello"},{"role":"model","content":"more"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	// Unrecognized roles are accepted and normalized to assistant turns
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastReq)
	require.Len(t, svc.lastReq.History, 3)
	assert.Equal(t, "user", svc.lastReq.History[0].Role)
	assert.Equal(t, "assistant", svc.lastReq.History[1].Role)
	assert.Equal(t, "assistant", svc.lastReq.History[2].Role)
}

func TestChatHandler_MissingQuestion(t *testing.T) {
	handler := NewChatHandler(&stubChatService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id":"s1"}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_NilService(t *testing.T) {
	handler := NewChatHandler(nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "LLM not initialized", decodeBody(t, rec)["error"])
}

func TestChatHandler_UninitializedProvider(t *testing.T) {
	handler := NewChatHandler(&stubChatService{err: chat.ErrNotInitialized}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "LLM not initialized", decodeBody(t, rec)["error"])
}

func TestChatHandler_ProviderFailure(t *testing.T) {
	handler := NewChatHandler(&stubChatService{err: errors.New("model overloaded")}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "model overloaded")
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	handler := NewChatHandler(&stubChatService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func multipartUpload(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "file", "lease.txt", []byte("rent is due"), map[string]string{"session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "File 'lease.txt' processed successfully.", body["message"])
	assert.Equal(t, float64(2), body["chunks"])
}

func TestUploadHandler_NilService(t *testing.T) {
	handler := NewDocumentHandler(nil, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "file", "lease.txt", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Embeddings model not initialized", decodeBody(t, rec)["error"])
}

func TestUploadHandler_NoFilePart(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "", "", nil, map[string]string{"session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part", decodeBody(t, rec)["error"])
}

func TestUploadHandler_UnsupportedFormat(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestService{err: extract.ErrUnsupportedFormat}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "file", "data.csv", []byte("a,b"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File type not supported", decodeBody(t, rec)["error"])
}

func TestUploadHandler_EmptyDocument(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestService{err: ingest.ErrEmptyDocument}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "file", "blank.txt", []byte("  "), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_PipelineFailure(t *testing.T) {
	handler := NewDocumentHandler(&stubIngestService{err: errors.New("embedding quota exceeded")}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "file", "lease.txt", []byte("text"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "embedding quota exceeded")
}

func TestResetHandler(t *testing.T) {
	registry := sessions.NewRegistry(nil, arbor.NewLogger())
	handler := NewSessionHandler(registry, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/reset", strings.NewReader(`{"session_id":"s1"}`))
	rec := httptest.NewRecorder()
	handler.ResetHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Conversation reset successfully.", decodeBody(t, rec)["message"])

	// Idempotent: resetting again confirms success too
	req = httptest.NewRequest(http.MethodPost, "/api/sessions/reset", strings.NewReader(`{"session_id":"s1"}`))
	rec = httptest.NewRecorder()
	handler.ResetHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVisionHandler(t *testing.T) {
	handler := NewVisionHandler(&stubVisionService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "image", "photo.png", []byte{0x89, 0x50}, map[string]string{"question": "what is this?"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/vision", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ChatVisionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "vision answer", body["answer"])
	assert.Equal(t, []interface{}{}, body["related_questions"])
}

func TestVisionHandler_MissingQuestion(t *testing.T) {
	handler := NewVisionHandler(&stubVisionService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "image", "photo.png", []byte{0x89}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/vision", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ChatVisionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image and question are required", decodeBody(t, rec)["error"])
}

func TestVisionHandler_NilService(t *testing.T) {
	handler := NewVisionHandler(nil, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "image", "photo.png", []byte{0x89}, map[string]string{"question": "q"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/vision", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ChatVisionHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Vision LLM not initialized", decodeBody(t, rec)["error"])
}

func TestTranscribeHandler(t *testing.T) {
	handler := NewTranscribeHandler(&stubTranscriptionService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "audio", "recording.webm", []byte{0x1a, 0x45}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.TranscribeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spoken words", decodeBody(t, rec)["transcription"])
}

func TestTranscribeHandler_MissingAudio(t *testing.T) {
	handler := NewTranscribeHandler(&stubTranscriptionService{}, 32<<20, arbor.NewLogger())

	buf, contentType := multipartUpload(t, "", "", nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.TranscribeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No audio file part", decodeBody(t, rec)["error"])
}

func TestHealthAndVersionHandlers(t *testing.T) {
	handler := NewAPIHandler(Capabilities{Chat: true, Ingestion: true})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])

	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec = httptest.NewRecorder()
	handler.VersionHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Degraded(t *testing.T) {
	handler := NewAPIHandler(Capabilities{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, "degraded", decodeBody(t, rec)["status"])
}
