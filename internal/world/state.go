package world

import "sort"

// AgentID identifies one agent for its lifetime.
type AgentID int64

// Agent is in-memory state for one colony agent. Accessed only from the
// game loop goroutine — no locks needed.
type Agent struct {
	ID     AgentID
	Name   string
	X      int
	Y      int
	Energy int
	Idle   int // ticks since the agent last moved
}

// Stats are running totals kept alongside the agent set.
type Stats struct {
	Spawned   uint64
	Retired   uint64
	Telemetry int64 // accumulated telemetry readings
}

// State is the authoritative world: the full agent set plus counters. It is
// owned by the game loop goroutine; background tasks reach it only through
// main-thread callbacks.
type State struct {
	nextID AgentID
	agents map[AgentID]*Agent
	Stats  Stats
}

func NewState() *State {
	return &State{
		agents: make(map[AgentID]*Agent, 64),
	}
}

// Spawn creates a new agent and registers it.
func (s *State) Spawn(name string, x, y, energy int) *Agent {
	s.nextID++
	a := &Agent{
		ID:     s.nextID,
		Name:   name,
		X:      x,
		Y:      y,
		Energy: energy,
	}
	s.agents[a.ID] = a
	s.Stats.Spawned++
	return a
}

func (s *State) Get(id AgentID) *Agent {
	return s.agents[id]
}

// Remove deletes an agent. Returns false if it was not present.
func (s *State) Remove(id AgentID) bool {
	if _, ok := s.agents[id]; !ok {
		return false
	}
	delete(s.agents, id)
	s.Stats.Retired++
	return true
}

func (s *State) Count() int {
	return len(s.agents)
}

// Agents visits every agent in ID order, so per-tick iteration is
// deterministic.
func (s *State) Agents(fn func(*Agent)) {
	ids := make([]AgentID, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(s.agents[id])
	}
}
