package system

import (
	"github.com/tickworld/worldbridge/internal/core/event"
	coresys "github.com/tickworld/worldbridge/internal/core/system"
	"github.com/tickworld/worldbridge/internal/world"
)

// CleanupSystem retires agents whose energy is spent and announces each
// retirement on the bus. Phase 3 (Cleanup).
type CleanupSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewCleanupSystem(ws *world.State, bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{world: ws, bus: bus}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(tick uint64) {
	var spent []*world.Agent
	s.world.Agents(func(a *world.Agent) {
		if a.Energy <= 0 {
			spent = append(spent, a)
		}
	})
	for _, a := range spent {
		s.world.Remove(a.ID)
		event.Emit(s.bus, world.AgentRetired{ID: a.ID, Name: a.Name, Tick: tick})
	}
}
