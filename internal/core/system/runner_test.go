package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	trace *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(tick uint64) {
	*s.trace = append(*s.trace, s.name)
}

func TestRunnerExecutesInPhaseOrder(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseIngest, name: "ingest", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseSimulate, name: "simulate", trace: &trace})

	r.Tick(1)
	assert.Equal(t, []string{"ingest", "simulate", "cleanup"}, trace)
}

func TestRunnerStableWithinPhase(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseSimulate, name: "a", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseSimulate, name: "b", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseIngest, name: "in", trace: &trace})

	r.Tick(1)
	assert.Equal(t, []string{"in", "a", "b"}, trace)
}
