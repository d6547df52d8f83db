package world

// Inbound signal types. These are produced by asynchronous sources outside
// the game loop and reach the world through per-type event channels drained
// once per tick.

// SpawnRequest asks the world to create a new agent.
type SpawnRequest struct {
	Name   string
	X      int
	Y      int
	Energy int
}

// Telemetry is a reading from an external sensor feed.
type Telemetry struct {
	Source string
	Value  int64
}

// AgentRetired is emitted on the game loop when an agent runs out of
// energy and is removed. Readable the tick after it is emitted.
type AgentRetired struct {
	ID   AgentID
	Name string
	Tick uint64
}
