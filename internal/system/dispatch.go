package system

import (
	"github.com/tickworld/worldbridge/internal/core/event"
	coresys "github.com/tickworld/worldbridge/internal/core/system"
)

// DispatchSystem delivers this tick's events to bus subscribers.
// Phase 2 (Resolve), so handlers see the tick's ingested and simulated
// state.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *DispatchSystem) Update(uint64) {
	s.bus.DispatchAll()
}
