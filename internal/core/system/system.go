package system

// Phase defines execution ordering within a single tick. Systems run after
// the bridge pump, so bridged events for the tick are already in place.
type Phase int

const (
	PhaseIngest   Phase = iota // 0: consume bridged events
	PhaseSimulate              // 1: agent behavior
	PhaseResolve               // 2: handler dispatch, derived stats
	PhaseCleanup               // 3: retire spent agents
)

// System is the interface every per-tick world system implements.
type System interface {
	Phase() Phase
	Update(tick uint64)
}
