package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for agent behavior scripts.
// Single-goroutine access only: it runs exclusively on the game loop.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// AgentContext holds pre-packed data for one agent's behavior decision.
type AgentContext struct {
	ID     int64
	Tick   uint64
	X      int
	Y      int
	Energy int
	Idle   int // ticks since the agent last moved
}

// AgentCommand is one action returned by the Lua behavior function.
type AgentCommand struct {
	Type string // "move", "recharge", "idle"
	DX   int
	DY   int
}

// DecideAgent calls the Lua decide_agent(ctx) function and returns its
// command list. A missing function or a script error yields no commands;
// the agent simply idles that tick.
func (e *Engine) DecideAgent(ctx AgentContext) []AgentCommand {
	fn := e.vm.GetGlobal("decide_agent")
	if fn == lua.LNil {
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(ctx.ID))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("energy", lua.LNumber(ctx.Energy))
	t.RawSetString("idle", lua.LNumber(ctx.Idle))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua decide_agent error", zap.Error(err), zap.Int64("agent", ctx.ID))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []AgentCommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, AgentCommand{
				Type: lStr(row, "type"),
				DX:   lInt(row, "dx"),
				DY:   lInt(row, "dy"),
			})
		}
	})
	return cmds
}

// lInt reads a number field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}
