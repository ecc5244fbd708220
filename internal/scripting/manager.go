package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/dice"
)

type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed LState per script and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook. Each LState is single-threaded; a
// per-script mutex serializes calls into the same script while different
// scripts run concurrently.
type Manager struct {
	mu        sync.RWMutex
	vms       map[string]*vm
	roller    *dice.Roller
	logger    *zap.Logger
	instLimit int
}

// NewManager creates a Manager whose hook calls are each limited to instLimit
// opcodes (0 uses DefaultInstructionLimit).
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{
		vms:       make(map[string]*vm),
		roller:    roller,
		logger:    logger,
		instLimit: instLimit,
	}
}

// LoadScript creates a sandboxed VM named name and executes src in it.
// Loading a name twice replaces the earlier VM.
//
// Precondition: name must be non-empty.
func (m *Manager) LoadScript(name, src string) error {
	L, done := NewSandboxedState(m.instLimit)
	m.RegisterModules(L, name)
	err := L.DoString(src)
	done()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.vms[name]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[name] = &vm{L: L}
	return nil
}

// LoadDirectory loads every *.lua file in dir in lexicographic order, naming
// each VM after its file stem.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", name, err)
		}
		if err := m.LoadScript(strings.TrimSuffix(name, ".lua"), string(src)); err != nil {
			return err
		}
	}
	return nil
}

// Scripts returns loaded script names in sorted order.
func (m *Manager) Scripts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.vms))
	for n := range m.vms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CallHook calls the named Lua global function in script's VM with args
// converted by ToLua. Returns (LNil, nil) if the script or hook is not
// defined. Lua runtime errors, including an exhausted instruction budget or a
// cancelled ctx, are logged at Warn level and returned.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, script, hook string, args ...any) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[script]
	m.mu.RUnlock()
	if !ok {
		m.logger.Info("scripting: no VM for script",
			zap.String("script", script),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	largs := make([]lua.LValue, 0, len(args))
	for i, a := range args {
		lv, err := ToLua(L, a)
		if err != nil {
			return lua.LNil, fmt.Errorf("scripting: %s.%s arg %d: %w", script, hook, i, err)
		}
		largs = append(largs, lv)
	}

	done := LimitInstructions(ctx, L, m.instLimit)
	defer done()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, largs...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("scripting: %s.%s: %w", script, hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close closes every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, name)
	}
}
