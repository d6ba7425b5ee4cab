package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulationStatus_CanTransition(t *testing.T) {
	all := []SimulationStatus{StatusIdle, StatusRunning, StatusPaused, StatusTerminated}
	allowed := map[SimulationStatus][]SimulationStatus{
		StatusIdle:    {StatusRunning, StatusTerminated},
		StatusRunning: {StatusPaused, StatusTerminated},
		StatusPaused:  {StatusRunning, StatusTerminated},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}
