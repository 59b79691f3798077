// Package server provides the HTTP surface of srsbot.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/srsbot/internal/artifact"
	"github.com/raphaelgruber/srsbot/internal/conversation"
	"github.com/raphaelgruber/srsbot/internal/document"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/service"
)

const (
	// MaxExportBytes is the largest chat export accepted.
	MaxExportBytes = 10 * 1024 * 1024

	// maxExportBody bounds the JSON request carrying an export. A \u00XX
	// escape turns one content byte into six.
	maxExportBody = 6*MaxExportBytes + 1<<20

	// maxChatBody bounds a chat request.
	maxChatBody = 1 << 20

	// SessionHeader carries the session id when the body does not.
	SessionHeader = "X-Session-ID"

	exportFilename = "chat_export.html"
)

// Client-facing error messages. Internal details are only logged.
const (
	msgInvalidMessage = "Invalid message format"
	msgInvalidExport  = "Invalid export format"
	msgUnexpected     = "An unexpected error occurred"
	msgNotFound       = "Document not found"
	msgRenderFailed   = "Failed to create document"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"session_id,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response   string `json:"response"`
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id,omitempty"`
}

// ExportRequest is the body of POST /export-chat.
type ExportRequest struct {
	Content *string `json:"content"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Chat    *service.ChatService
	Metrics *metrics.Collector
	Logger  *slog.Logger

	// Static holds the landing page (index.html).
	Static fs.FS

	// PublicURL is the external base URL used in download links. When empty
	// the base is derived from each request.
	PublicURL string

	Limits RateLimits
}

// Server routes HTTP requests to the chat service.
type Server struct {
	chat      *service.ChatService
	metrics   *metrics.Collector
	logger    *slog.Logger
	static    fs.FS
	publicURL string
	limiter   *rateLimiter
	handler   http.Handler
}

// New creates the server and its routes.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		chat:      d.Chat,
		metrics:   d.Metrics,
		logger:    logger,
		static:    d.Static,
		publicURL: strings.TrimRight(d.PublicURL, "/"),
		limiter:   newRateLimiter(d.Limits),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.limit(s.handleChat, windowMinute, windowHour, windowDay))
	mux.HandleFunc("GET "+service.DocumentPath+"{id}", s.limit(s.handleDocument, windowHour, windowDay))
	mux.HandleFunc("POST /export-chat", s.limit(s.handleExport, windowHour, windowDay))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /", s.handleStatic)

	s.handler = LoggingMiddleware(logger)(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil || req.Message == nil {
		writeError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get(SessionHeader)
	}
	if sessionID == "" {
		sessionID = conversation.DefaultSessionID
	}

	reply, err := s.chat.Send(r.Context(), sessionID, *req.Message)
	if errors.Is(err, service.ErrInvalidMessage) {
		writeError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}
	if err != nil {
		s.logger.Error("chat turn failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	resp := ChatResponse{
		Response:  reply.Text,
		SessionID: reply.SessionID,
	}
	if reply.HasDocument() {
		resp.Response = service.AppendDownloadLink(reply.Text, s.documentURL(r, reply.DocumentID))
		resp.DocumentID = reply.DocumentID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	content, err := s.chat.Document(r.Context(), id)
	if errors.Is(err, artifact.ErrNotFound) {
		s.metrics.Inc(metrics.CounterDownloadMisses)
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.logger.Error("retrieve document failed", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, msgRenderFailed)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := document.Render(&buf, content); err != nil {
		s.logger.Error("render document failed", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, msgRenderFailed)
		return
	}
	s.metrics.RecordTiming(metrics.OpDocumentRender, time.Since(start))
	s.metrics.Inc(metrics.CounterDownloads)

	w.Header().Set("Content-Type", document.ContentType)
	w.Header().Set("Content-Disposition", attachment(document.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBody)).Decode(&req)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Chat export is too large. Maximum size is 10.0 MB.")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, msgInvalidExport)
		return
	}

	var content string
	if req.Content != nil {
		content = *req.Content
	}
	if len(content) > MaxExportBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"Chat export is too large (%.2f MB). Maximum size is 10.0 MB.", float64(len(content))/(1024*1024)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(exportFilename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// handleStatic serves the embedded landing page, falling back to index.html
// for unknown paths.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.static == nil {
		http.NotFound(w, r)
		return
	}
	if r.URL.Path != "/" {
		f, err := s.static.Open(strings.TrimPrefix(r.URL.Path, "/"))
		if errors.Is(err, fs.ErrNotExist) {
			r.URL.Path = "/"
		} else if err != nil {
			s.logger.Warn("unexpected error opening embedded file", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, msgUnexpected)
			return
		} else {
			f.Close()
		}
	}
	http.FileServer(http.FS(s.static)).ServeHTTP(w, r)
}

// documentURL returns the absolute download URL for a document.
func (s *Server) documentURL(r *http.Request, id string) string {
	base := s.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + service.DocumentPath + id
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%s", filename)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
