package simulation

import (
	"sync"
	"time"
)

// Scheduler runs a task periodically until the returned cancel func is called.
//
// Implementations must never start a task while the previous run is still in
// flight, and cancel must not return before an in-flight run has finished.
// Calling cancel more than once is a no-op.
type Scheduler interface {
	Schedule(interval time.Duration, task func()) (cancel func())
}

// ManualScheduler is a Scheduler driven by explicit Fire calls instead of a
// timer. It is used to fast-forward simulations and in tests.
type ManualScheduler struct {
	mu     sync.Mutex
	firing sync.Mutex
	tasks  map[int]func()
	nextID int
}

// NewManualScheduler creates an empty ManualScheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

// Schedule registers task; interval is ignored
func (m *ManualScheduler) Schedule(_ time.Duration, task func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.tasks[id] = task
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.tasks, id)
			m.mu.Unlock()

			// Wait for an in-flight Fire to finish
			m.firing.Lock()
			defer m.firing.Unlock()
		})
	}
}

// Fire runs every registered task once and returns how many ran.
// Concurrent Fire calls are serialised.
func (m *ManualScheduler) Fire() int {
	m.firing.Lock()
	defer m.firing.Unlock()

	m.mu.Lock()
	tasks := make([]func(), 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	m.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Active returns the number of registered tasks
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
