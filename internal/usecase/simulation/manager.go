package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/aggregator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/allocator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/pricing"
)

// DefaultMaxSessions caps the number of live sessions
const DefaultMaxSessions = 64

// ManagerConfig configures a Manager
type ManagerConfig struct {
	Scheduler   Scheduler
	Interval    time.Duration
	MaxSessions int
	Seed        uint64 // Non-zero makes every draw reproducible
	Now         func() time.Time
	Logger      zerolog.Logger
}

// SessionInfo is a short description of a live session
type SessionInfo struct {
	ID           uuid.UUID               `json:"id"`
	Status       domain.SimulationStatus `json:"status"`
	ElapsedTicks int                     `json:"elapsedTicks"`
}

// Manager keeps the live simulation sessions of this process in memory.
// Nothing survives a restart.
type Manager struct {
	scheduler   Scheduler
	interval    time.Duration
	maxSessions int
	seed        uint64
	now         func() time.Time
	log         zerolog.Logger

	calculator *allocator.Calculator

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	started  uint64
}

// NewManager creates a Manager
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTickInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Manager{
		scheduler:   cfg.Scheduler,
		interval:    cfg.Interval,
		maxSessions: cfg.MaxSessions,
		seed:        cfg.Seed,
		now:         cfg.Now,
		log:         cfg.Logger.With().Str("component", "simulation_manager").Logger(),
		sessions:    make(map[uuid.UUID]*Session),
	}
	m.calculator = allocator.NewCalculator(m.source(0))
	return m
}

// StartSession allocates req and starts a new session for it.
// A nil request means the caller skipped the allocation step.
func (m *Manager) StartSession(ctx context.Context, req *domain.AllocationRequest) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrMissingSessionState
	}

	alloc, err := m.calculator.Calculate(*req)
	if err != nil {
		m.log.Info().Err(err).Msg("Allocation rejected")
		return nil, err
	}

	m.mu.Lock()
	if len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: limit is %d", domain.ErrTooManySessions, m.maxSessions)
	}
	m.started++
	session := NewSession(
		m.scheduler,
		aggregator.New(pricing.NewUniformWalk(m.source(m.started))),
		WithInterval(m.interval),
		WithClock(m.now),
		WithLogger(m.log),
	)
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	if err := session.Start(alloc); err != nil {
		m.remove(session.ID())
		return nil, err
	}
	return session, nil
}

// Get returns a live session
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session, nil
}

// Pause pauses a session and returns its snapshot
func (m *Manager) Pause(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return m.command(ctx, id, (*Session).Pause)
}

// Resume resumes a session and returns its snapshot
func (m *Manager) Resume(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return m.command(ctx, id, (*Session).Resume)
}

// Snapshot returns the current snapshot of a session
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) (domain.SessionSnapshot, error) {
	return m.command(ctx, id, func(*Session) error { return nil })
}

// Reset terminates a session and forgets it
func (m *Manager) Reset(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	m.remove(id)
	return session.Reset()
}

// List describes every live session, oldest ID first
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for id, session := range m.sessions {
		snap := session.Snapshot()
		infos = append(infos, SessionInfo{ID: id, Status: snap.Status, ElapsedTicks: snap.ElapsedTicks})
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID.String() < infos[j].ID.String()
	})
	return infos
}

// Shutdown tears down every session, releasing all timers
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		if err := session.Reset(); err != nil {
			m.log.Warn().Err(err).Str("session_id", session.ID().String()).Msg("Failed to tear down session")
		}
	}
	m.log.Info().Int("sessions", len(sessions)).Msg("Simulation manager shut down")
}

func (m *Manager) command(ctx context.Context, id uuid.UUID, fn func(*Session) error) (domain.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionSnapshot{}, err
	}
	session, err := m.Get(id)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := fn(session); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

func (m *Manager) remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// source returns the random source for stream n. With a zero seed every
// stream is seeded from the global generator.
func (m *Manager) source(stream uint64) rand.Source {
	if m.seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(m.seed, stream)
}
