// Package conversation holds per-session transcripts of user and assistant turns.
package conversation

import (
	"sync"

	"github.com/raphaelgruber/srsbot/internal/models"
)

// Transcript is an append-only, ordered log of turns.
// All methods are safe for concurrent use.
type Transcript struct {
	mu    sync.RWMutex
	turns []models.Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds turns to the end of the transcript in the given order.
// Multiple turns are appended atomically: a concurrent All never observes
// only part of them.
func (t *Transcript) Append(turns ...models.Turn) {
	if len(turns) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = append(t.turns, turns...)
}

// All returns a copy of the full history in insertion order.
func (t *Transcript) All() []models.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns recorded so far.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.turns)
}
