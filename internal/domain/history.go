package domain

import (
	"sync"
	"time"
)

// HistoryCapacity is the fixed number of samples retained by every HistoryBuffer
const HistoryCapacity = 20

// PricePoint is one per-asset history sample
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Value float64   `json:"value"`
}

// ValuePoint is one portfolio history sample
type ValuePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// HistoryBuffer is a bounded FIFO time-series, most recent sample last.
// Once full, every Append evicts the oldest sample. A single writer may
// append while any number of readers call Snapshot.
type HistoryBuffer[T any] struct {
	mu      sync.RWMutex
	samples []T
}

// NewHistoryBuffer creates an empty buffer with HistoryCapacity slots
func NewHistoryBuffer[T any]() *HistoryBuffer[T] {
	return &HistoryBuffer[T]{
		samples: make([]T, 0, HistoryCapacity),
	}
}

// Append adds a sample to the end, evicting the oldest one if the buffer is full
func (b *HistoryBuffer[T]) Append(sample T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) == HistoryCapacity {
		copy(b.samples, b.samples[1:])
		b.samples = b.samples[:HistoryCapacity-1]
	}
	b.samples = append(b.samples, sample)
}

// Snapshot returns a copy of the samples in order, oldest first
func (b *HistoryBuffer[T]) Snapshot() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, len(b.samples))
	copy(out, b.samples)
	return out
}

// Clone returns an independent buffer holding the same samples
func (b *HistoryBuffer[T]) Clone() *HistoryBuffer[T] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := NewHistoryBuffer[T]()
	out.samples = append(out.samples, b.samples...)
	return out
}

// Len returns the number of samples currently held
func (b *HistoryBuffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Latest returns the most recent sample, if any
func (b *HistoryBuffer[T]) Latest() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	if len(b.samples) == 0 {
		return zero, false
	}
	return b.samples[len(b.samples)-1], true
}
