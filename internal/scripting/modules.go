package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.random(n)  → integer in [1, n], drawn from the Manager's roller
//	engine.log(msg)   → writes msg to the Manager's logger at debug level
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, script string) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"random": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n <= 0 {
				L.ArgError(1, "n must be positive")
				return 0
			}
			L.Push(lua.LNumber(m.roller.Choose(script, n) + 1))
			return 1
		},
		"log": func(L *lua.LState) int {
			m.logger.Debug("script log",
				zap.String("script", script),
				zap.String("msg", L.CheckString(1)),
			)
			return 0
		},
	})
	L.SetGlobal("engine", engine)
}
