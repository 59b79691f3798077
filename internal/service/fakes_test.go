package service

import (
	"context"
	"sync"

	"github.com/raphaelgruber/srsbot/internal/models"
)

// fakeModel is an llm.Client with canned replies that records its inputs.
type fakeModel struct {
	mu sync.Mutex

	chatReply string
	chatErr   error
	genReply  string
	genErr    error

	chatHistories [][]models.Turn
	chatSystems   []string
	prompts       []string
}

func (f *fakeModel) Chat(_ context.Context, system string, history []models.Turn, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatSystems = append(f.chatSystems, system)
	f.chatHistories = append(f.chatHistories, history)
	return f.chatReply, f.chatErr
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.genReply, f.genErr
}

// failingRegistry rejects every registration.
type failingRegistry struct{ err error }

func (r failingRegistry) Register(context.Context, string) (string, error) { return "", r.err }
func (r failingRegistry) Retrieve(context.Context, string) (string, error) { return "", r.err }
