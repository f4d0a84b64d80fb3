package session

import (
	"context"
	"sync"

	"github.com/andrev/phraseflash/internal/content"
	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
)

// Manager keeps one active orchestrator per profile for the HTTP layer.
// Starting a new session for a profile replaces any previous orchestrator;
// the old one's persisted reviews stay valid, only the in-memory run is
// discarded.
type Manager struct {
	phrases  repository.PhraseRepository
	reviews  repository.ReviewRepository
	sessions repository.SessionRepository
	stories  content.StoryGenerator
	clozes   content.ClozeGenerator

	mu     sync.RWMutex
	active map[int64]*Orchestrator
}

// NewManager creates a session manager. stories and clozes may be nil; the
// matching phases are then skipped for every session.
func NewManager(
	phrases repository.PhraseRepository,
	reviews repository.ReviewRepository,
	sessions repository.SessionRepository,
	stories content.StoryGenerator,
	clozes content.ClozeGenerator,
) *Manager {
	return &Manager{
		phrases:  phrases,
		reviews:  reviews,
		sessions: sessions,
		stories:  stories,
		clozes:   clozes,
		active:   make(map[int64]*Orchestrator),
	}
}

// Start opens a new session for the profile in cfg and returns it along with
// the orchestrator driving it.
func (m *Manager) Start(ctx context.Context, cfg Config) (*models.Session, *Orchestrator, error) {
	opts := []Option{}
	if m.stories != nil {
		opts = append(opts, WithStoryGenerator(m.stories))
	}
	if m.clozes != nil {
		opts = append(opts, WithClozeGenerator(m.clozes))
	}
	orch := NewOrchestrator(m.phrases, m.reviews, m.sessions, opts...)

	sess, err := orch.Start(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.active[cfg.ProfileID] = orch
	m.mu.Unlock()
	return sess, orch, nil
}

// Get returns the profile's active orchestrator, failing with NoActiveSession
// when there is none.
func (m *Manager) Get(profileID int64) (*Orchestrator, error) {
	m.mu.RLock()
	orch, ok := m.active[profileID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NewNoActiveSessionError()
	}
	return orch, nil
}

// Remove drops the profile's orchestrator, typically after completion.
func (m *Manager) Remove(profileID int64) {
	m.mu.Lock()
	delete(m.active, profileID)
	m.mu.Unlock()
}
