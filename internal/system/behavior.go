package system

import (
	"go.uber.org/zap"

	coresys "github.com/tickworld/worldbridge/internal/core/system"
	"github.com/tickworld/worldbridge/internal/scripting"
	"github.com/tickworld/worldbridge/internal/world"
)

// moveCost is the energy drained by one step.
const moveCost = 2

// BehaviorSystem runs the Lua behavior script for every agent: Go owns the
// state mutation, Lua owns the decision. Phase 1 (Simulate).
type BehaviorSystem struct {
	world  *world.State
	engine *scripting.Engine
	log    *zap.Logger
}

func NewBehaviorSystem(ws *world.State, engine *scripting.Engine, log *zap.Logger) *BehaviorSystem {
	return &BehaviorSystem{world: ws, engine: engine, log: log}
}

func (s *BehaviorSystem) Phase() coresys.Phase { return coresys.PhaseSimulate }

func (s *BehaviorSystem) Update(tick uint64) {
	s.world.Agents(func(a *world.Agent) {
		cmds := s.engine.DecideAgent(scripting.AgentContext{
			ID:     int64(a.ID),
			Tick:   tick,
			X:      a.X,
			Y:      a.Y,
			Energy: a.Energy,
			Idle:   a.Idle,
		})

		moved := false
		for _, cmd := range cmds {
			switch cmd.Type {
			case "move":
				a.X += clampStep(cmd.DX)
				a.Y += clampStep(cmd.DY)
				a.Energy -= moveCost
				moved = true
			case "recharge":
				a.Energy++
			case "idle":
				// nothing
			default:
				s.log.Warn("unknown agent command",
					zap.String("type", cmd.Type),
					zap.Int64("agent", int64(a.ID)),
				)
			}
		}

		if moved {
			a.Idle = 0
		} else {
			a.Idle++
		}
	})
}

// clampStep limits a scripted move to one tile per axis per tick.
func clampStep(d int) int {
	if d > 1 {
		return 1
	}
	if d < -1 {
		return -1
	}
	return d
}
