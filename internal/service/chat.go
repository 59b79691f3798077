// Package service provides the conversation and document workflows of srsbot.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/srsbot/internal/artifact"
	"github.com/raphaelgruber/srsbot/internal/conversation"
	"github.com/raphaelgruber/srsbot/internal/llm"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/models"
	"github.com/raphaelgruber/srsbot/internal/prompts"
)

// DocumentPath is the route prefix under which generated documents are served.
const DocumentPath = "/create_document/"

// Reply is the outcome of one completed turn.
type Reply struct {
	SessionID string

	// Text is the assistant reply as stored in the transcript.
	Text string

	// DocumentID is set when the turn produced a document.
	DocumentID string
}

// HasDocument reports whether the turn produced a document.
func (r Reply) HasDocument() bool {
	return r.DocumentID != ""
}

// ChatService runs conversation turns and produces documents on request.
type ChatService struct {
	model       llm.Client
	prompts     prompts.Set
	synthesizer *Synthesizer
	registry    artifact.Registry
	sessions    *conversation.Sessions
	metrics     *metrics.Collector
	logger      *slog.Logger
}

// NewChatService creates a chat service.
func NewChatService(
	model llm.Client,
	p prompts.Set,
	registry artifact.Registry,
	sessions *conversation.Sessions,
	mc *metrics.Collector,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		model:       model,
		prompts:     p,
		synthesizer: NewSynthesizer(model, p, mc),
		registry:    registry,
		sessions:    sessions,
		metrics:     mc,
		logger:      logger,
	}
}

// Send runs one turn in session sessionID.
//
// The model reply is requested with the session history as context. When
// the message asks for a document, the conversation including this turn is
// synthesized and registered. The user and assistant turns are recorded only
// if every step succeeds; on failure the transcript is left unchanged.
func (s *ChatService) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	if message == "" {
		return Reply{}, ErrInvalidMessage
	}

	sess := s.sessions.Acquire(sessionID)
	defer s.sessions.Release(sess)
	sess.Lock()
	defer sess.Unlock()

	reply, err := s.turn(ctx, sess, message)
	if err != nil {
		s.metrics.Inc(metrics.CounterChatFailures)
		return Reply{}, err
	}

	s.metrics.Inc(metrics.CounterChatTurns)
	return reply, nil
}

func (s *ChatService) turn(ctx context.Context, sess *conversation.Session, message string) (Reply, error) {
	history := sess.Transcript.All()

	text, err := s.model.Chat(ctx, s.prompts.System, history, message)
	if err != nil {
		return Reply{}, fmt.Errorf("model reply: %w", err)
	}

	userTurn := models.UserTurn(message)
	assistantTurn := models.AssistantTurn(text)
	reply := Reply{SessionID: sess.ID, Text: text}

	if ShouldGenerateDocument(message) {
		turns := append(history, userTurn, assistantTurn)

		content, err := s.synthesizer.Synthesize(ctx, turns)
		if err != nil {
			return Reply{}, err
		}
		id, err := s.registry.Register(ctx, content)
		if err != nil {
			return Reply{}, fmt.Errorf("register document: %w", err)
		}
		reply.DocumentID = id
		s.metrics.Inc(metrics.CounterDocumentsCreated)
		s.logger.Info("document created", "session_id", sess.ID, "document_id", id, "chars", len(content))
	}

	sess.Transcript.Append(userTurn, assistantTurn)
	return reply, nil
}

// History returns a copy of the transcript of sessionID.
func (s *ChatService) History(sessionID string) []models.Turn {
	return s.sessions.Get(sessionID).Transcript.All()
}

// Document returns the raw text of a generated document.
func (s *ChatService) Document(ctx context.Context, id string) (string, error) {
	return s.registry.Retrieve(ctx, id)
}

// AppendDownloadLink appends the download anchor for url to reply text.
func AppendDownloadLink(text, url string) string {
	return text + "\n\nI've prepared an SRS document based on our conversation. " +
		"Here's the link to download your SRS document: " +
		"<a href='" + url + "' target='_blank'>Download SRS Document</a>"
}
