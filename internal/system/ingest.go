package system

import (
	"go.uber.org/zap"

	"github.com/tickworld/worldbridge/internal/core/event"
	coresys "github.com/tickworld/worldbridge/internal/core/system"
	"github.com/tickworld/worldbridge/internal/world"
)

// IngestSystem consumes this tick's bridged signals: spawn requests become
// agents, telemetry readings are accumulated. Phase 0 (Ingest).
type IngestSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewIngestSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *IngestSystem {
	return &IngestSystem{world: ws, bus: bus, log: log}
}

func (s *IngestSystem) Phase() coresys.Phase { return coresys.PhaseIngest }

func (s *IngestSystem) Update(tick uint64) {
	for _, req := range event.Read[world.SpawnRequest](s.bus) {
		a := s.world.Spawn(req.Name, req.X, req.Y, req.Energy)
		s.log.Info("agent spawned",
			zap.Int64("id", int64(a.ID)),
			zap.String("name", a.Name),
			zap.Uint64("tick", tick),
		)
	}

	for _, tm := range event.Read[world.Telemetry](s.bus) {
		s.world.Stats.Telemetry += tm.Value
	}
}
