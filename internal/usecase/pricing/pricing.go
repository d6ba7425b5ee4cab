package pricing

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxStep bounds the relative price move of one tick
	MaxStep = 0.02
	// Floor is the smallest price a simulated asset may reach
	Floor = 0.01
)

// Simulator advances a price by one tick
type Simulator interface {
	Next(price float64) float64
}

// SimulatorFunc adapts a plain function to the Simulator interface
type SimulatorFunc func(price float64) float64

// Next calls f(price)
func (f SimulatorFunc) Next(price float64) float64 { return f(price) }

// Clamp enforces the price floor. It reports whether the floor was applied,
// which happens when the price is non-finite or below Floor.
func Clamp(price float64) (float64, bool) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < Floor {
		return Floor, true
	}
	return price, false
}

// UniformWalk moves a price by a relative step drawn from U(-MaxStep, MaxStep).
// Every asset is stepped independently; there is no cross-asset correlation.
type UniformWalk struct {
	mu    sync.Mutex
	delta distuv.Uniform
}

// NewUniformWalk creates a UniformWalk drawing from src
func NewUniformWalk(src rand.Source) *UniformWalk {
	return &UniformWalk{
		delta: distuv.Uniform{Min: -MaxStep, Max: MaxStep, Src: src},
	}
}

// Next returns price × (1 + δ), clamped to Floor
func (w *UniformWalk) Next(price float64) float64 {
	w.mu.Lock()
	delta := w.delta.Rand()
	w.mu.Unlock()

	next, _ := Clamp(price * (1 + delta))
	return next
}
