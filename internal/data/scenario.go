package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentTemplate describes one kind of agent the scenario's spawn feed
// produces.
type AgentTemplate struct {
	Name   string `yaml:"name"`
	Count  int    `yaml:"count"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Energy int    `yaml:"energy"`
}

// Scenario is the demo world's data file: the agent population the spawn
// feed produces and the sensor names the telemetry feed reports for.
type Scenario struct {
	Agents           []AgentTemplate `yaml:"agents"`
	TelemetrySources []string        `yaml:"telemetry_sources"`
}

// TotalAgents returns the number of spawn requests one full pass over the
// templates produces.
func (s *Scenario) TotalAgents() int {
	total := 0
	for _, tmpl := range s.Agents {
		total += tmpl.Count
	}
	return total
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	for i, tmpl := range sc.Agents {
		if tmpl.Name == "" {
			return nil, fmt.Errorf("scenario %s: agent %d has no name", path, i)
		}
		if tmpl.Count < 1 {
			sc.Agents[i].Count = 1
		}
		if tmpl.Energy < 1 {
			return nil, fmt.Errorf("scenario %s: agent %q needs positive energy", path, tmpl.Name)
		}
	}

	if len(sc.TelemetrySources) == 0 {
		sc.TelemetrySources = []string{"sensor-0"}
	}
	return &sc, nil
}
