package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/aggregator"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/allocator"
)

// DefaultTickInterval is the cadence of simulation ticks
const DefaultTickInterval = 3 * time.Second

// Session is one run of the simulation engine, from Start to Terminated.
// It exclusively owns its portfolio; readers only ever see copies through
// Snapshot and Subscribe, taken either before or after a whole tick.
type Session struct {
	id         uuid.UUID
	interval   time.Duration
	scheduler  Scheduler
	aggregator *aggregator.Aggregator
	now        func() time.Time
	log        zerolog.Logger

	// cmdMu serialises commands so a pause has fully released the timer
	// before a resume can schedule a new one
	cmdMu sync.Mutex

	mu           sync.RWMutex
	status       domain.SimulationStatus
	elapsedTicks int
	portfolio    *domain.Portfolio
	cancel       func()

	subMu       sync.Mutex
	subscribers map[int]chan domain.SessionSnapshot
	nextSub     int
}

// Option configures a Session
type Option func(*Session)

// WithInterval sets the tick cadence
func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithClock sets the time source used to stamp history samples
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithID overrides the generated session ID
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates an Idle session
func NewSession(scheduler Scheduler, agg *aggregator.Aggregator, opts ...Option) *Session {
	s := &Session{
		id:          uuid.New(),
		interval:    DefaultTickInterval,
		scheduler:   scheduler,
		aggregator:  agg,
		now:         time.Now,
		log:         zerolog.Nop(),
		status:      domain.StatusIdle,
		subscribers: make(map[int]chan domain.SessionSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session_id", s.id.String()).Logger()
	return s
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID { return s.id }

// Status returns the current lifecycle state
func (s *Session) Status() domain.SimulationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Start moves an Idle session to Running with the given allocation.
// Without an allocation the session refuses to start and stays Idle.
// The session simulates its own copy of the assets; alloc is not mutated
// and may be shared with other sessions.
func (s *Session) Start(alloc *allocator.Allocation) error {
	if alloc == nil {
		return domain.ErrMissingSessionState
	}

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if err := s.checkTransitionLocked(domain.StatusRunning); err != nil {
		s.mu.Unlock()
		return err
	}

	assets := make([]*domain.Asset, len(alloc.Assets))
	for i, asset := range alloc.Assets {
		assets[i] = asset.Clone()
	}

	portfolio, err := domain.NewPortfolio(assets, alloc.InitialValue)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to build portfolio: %w", err)
	}
	s.aggregator.Seed(s.now(), portfolio)

	s.portfolio = portfolio
	s.status = domain.StatusRunning
	s.cancel = s.scheduler.Schedule(s.interval, s.tick)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().
		Str("status", string(domain.StatusRunning)).
		Int("assets", len(alloc.Assets)).
		Float64("initial_value", alloc.InitialValue).
		Dur("interval", s.interval).
		Msg("Simulation started")
	s.publish(snap)
	return nil
}

// Pause cancels the pending tick. Prices and history are kept.
func (s *Session) Pause() error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if err := s.checkTransitionLocked(domain.StatusPaused); err != nil {
		s.mu.Unlock()
		return err
	}
	s.status = domain.StatusPaused
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	// Outside the lock: an in-flight tick needs it to finish
	cancel()

	s.log.Info().Str("status", string(domain.StatusPaused)).Msg("Simulation paused")
	s.publish(s.Snapshot())
	return nil
}

// Resume reschedules ticks without resetting prices or history
func (s *Session) Resume() error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if s.status != domain.StatusPaused {
		err := s.checkTransitionLocked(domain.StatusRunning)
		if err == nil {
			err = fmt.Errorf("%w: cannot resume from %s", domain.ErrInvalidTransition, s.status)
		}
		s.mu.Unlock()
		return err
	}
	s.status = domain.StatusRunning
	s.cancel = s.scheduler.Schedule(s.interval, s.tick)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().Str("status", string(domain.StatusRunning)).Msg("Simulation resumed")
	s.publish(snap)
	return nil
}

// Reset terminates the session and discards all state. The timer is
// released before Reset returns and no further transitions are possible.
func (s *Session) Reset() error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if err := s.checkTransitionLocked(domain.StatusTerminated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.status = domain.StatusTerminated
	cancel := s.cancel
	s.cancel = nil
	s.portfolio = nil
	s.elapsedTicks = 0
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	s.log.Info().Str("status", string(domain.StatusTerminated)).Msg("Simulation terminated")
	s.publish(snap)
	s.closeSubscribers()
	return nil
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every tick and
// every transition. Slow readers miss snapshots rather than stall ticks.
// The channel is closed on unsubscribe or when the session terminates.
func (s *Session) Subscribe(buffer int) (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, buffer)

	s.subMu.Lock()
	if s.Status() == domain.StatusTerminated {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// tick is the scheduled task. The scheduler never runs two ticks at once.
func (s *Session) tick() {
	s.mu.Lock()
	if s.status != domain.StatusRunning {
		// Paused or reset after the scheduler fired
		s.mu.Unlock()
		return
	}

	result := s.aggregator.Tick(s.now(), s.portfolio)
	s.elapsedTicks++
	ticks := s.elapsedTicks
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, symbol := range result.Clamped {
		s.log.Warn().
			Err(domain.ErrDegeneratePrice).
			Str("symbol", symbol).
			Msg("Price clamped to floor")
	}
	s.log.Debug().
		Int("tick", ticks).
		Float64("portfolio_value", result.PortfolioValue).
		Msg("Tick completed")

	s.publish(snap)
}

func (s *Session) checkTransitionLocked(next domain.SimulationStatus) error {
	if s.status == domain.StatusTerminated {
		return domain.ErrSessionTerminated
	}
	if !s.status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.status, next)
	}
	return nil
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		SessionID:      s.id.String(),
		Status:         s.status,
		ElapsedTicks:   s.elapsedTicks,
		ElapsedSeconds: float64(s.elapsedTicks) * s.interval.Seconds(),
		Assets:         []domain.AssetView{},
		Portfolio:      domain.PortfolioView{History: []domain.ValuePoint{}},
	}
	if s.portfolio == nil {
		return snap
	}

	snap.Portfolio = domain.NewPortfolioView(s.portfolio, aggregator.Stats(s.portfolio.History.Snapshot()))
	for _, asset := range s.portfolio.Assets {
		snap.Assets = append(snap.Assets, domain.NewAssetView(asset))
	}
	return snap
}

func (s *Session) publish(snap domain.SessionSnapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			s.log.Debug().Int("subscriber", id).Msg("Subscriber full, dropping snapshot")
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}
