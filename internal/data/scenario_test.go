package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
agents:
  - name: drone
    count: 3
    x: 2
    y: 4
    energy: 100
  - name: probe
    energy: 40
telemetry_sources: [alpha, beta]
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	require.Len(t, sc.Agents, 2)
	assert.Equal(t, "drone", sc.Agents[0].Name)
	assert.Equal(t, 3, sc.Agents[0].Count)
	assert.Equal(t, 100, sc.Agents[0].Energy)
	assert.Equal(t, 1, sc.Agents[1].Count, "count defaults to 1")
	assert.Equal(t, 4, sc.TotalAgents())
	assert.Equal(t, []string{"alpha", "beta"}, sc.TelemetrySources)
}

func TestLoadScenarioDefaultsTelemetrySources(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "agents:\n  - name: drone\n    energy: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor-0"}, sc.TelemetrySources)
}

func TestLoadScenarioRejectsBadTemplates(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "agents:\n  - count: 2\n"))
	require.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "agents:\n  - name: x\n    energy: 0\n"))
	require.Error(t, err)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
