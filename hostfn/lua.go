package hostfn

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// LuaProvider registers host functions whose bodies are small Lua
// scripts rather than Go closures — useful for ISA packages that ship a
// reference implementation of an architecture's helper functions (carry
// computation, flag synthesis) as data alongside the .isa file instead of
// requiring a Go build per architecture. Each script receives its
// arguments as a global `args` table (1-indexed, as Lua expects) and
// returns its results via `return v1, v2, ...`.
type LuaProvider struct {
	state *lua.LState
}

// NewLuaProvider creates a fresh Lua VM. Callers should Close it when the
// owning MachineDescription is discarded.
func NewLuaProvider() *LuaProvider {
	return &LuaProvider{state: lua.NewState()}
}

// Close releases the underlying Lua VM.
func (p *LuaProvider) Close() {
	p.state.Close()
}

// RegisterScript compiles script once and installs it into reg under
// name; each Call re-runs the compiled chunk with fresh arguments, since
// gopher-lua chunks are not safely reentrant across concurrent cores
// sharing one LState — callers running multiple cores concurrently
// should give each core its own LuaProvider.
func (p *LuaProvider) RegisterScript(reg *Registry, name, script string) error {
	fn, err := p.state.LoadString(script)
	if err != nil {
		return fmt.Errorf("hostfn: compiling lua host function %q: %w", name, err)
	}

	reg.Register(name, func(ctx Context, args []int64) ([]int64, error) {
		argsTable := p.state.NewTable()
		for i, a := range args {
			argsTable.RawSetInt(i+1, lua.LNumber(a))
		}
		p.state.SetGlobal("args", argsTable)

		p.state.Push(fn)
		if err := p.state.PCall(0, lua.MultRet, nil); err != nil {
			return nil, fmt.Errorf("hostfn: lua host function %q: %w", name, err)
		}

		top := p.state.GetTop()
		results := make([]int64, 0, top)
		for i := 1; i <= top; i++ {
			v := p.state.Get(i)
			n, ok := v.(lua.LNumber)
			if !ok {
				return nil, fmt.Errorf("hostfn: lua host function %q returned non-numeric result", name)
			}
			results = append(results, int64(n))
		}
		p.state.SetTop(0)
		return results, nil
	})
	return nil
}
