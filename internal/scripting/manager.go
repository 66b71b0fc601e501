package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/dice"
)

// globalScriptID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no script VM is found.
const globalScriptID = "__global__"

// vm is one sandboxed state. An LState is single-threaded, so every use holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per script and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same script are
// serialized; different scripts run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	srcMu  sync.Mutex
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts loaded.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadScript creates a sandboxed VM for id and executes the file at path in it.
//
// Precondition: id must be non-empty.
// Postcondition: the VM replaces any previous VM for id; returns error on Lua load failure.
func (m *Manager) LoadScript(id, path string, instLimit int) error {
	return m.loadInto(id, []string{path}, instLimit)
}

// LoadDir loads every *.lua file in dir as its own script, keyed by the file
// name without extension. Returns the loaded ids in lexicographic order.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadDir(dir string, instLimit int) ([]string, error) {
	files, err := luaFiles(dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, path := range files {
		id := strings.TrimSuffix(filepath.Base(path), ".lua")
		if err := m.loadInto(id, []string{path}, instLimit); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadGlobal creates the shared fallback VM by executing every *.lua file in
// dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(dir string, instLimit int) error {
	files, err := luaFiles(dir)
	if err != nil {
		return err
	}
	return m.loadInto(globalScriptID, files, instLimit)
}

func luaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manager) loadInto(key string, files []string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	return nil
}

// Has reports whether a VM is loaded for id. The global fallback is not considered.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[id]
	return ok
}

// CallHook calls the named Lua global function in id's VM. If id has no VM
// the global VM is tried as a fallback. Returns (LNil, nil) if the hook is
// not defined or no VM exists. Lua runtime errors, including exhausting the
// instruction budget, are logged at Warn level and never propagated.
//
// Args are Go values converted with ToLua inside the VM.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(id, hook string, args ...any) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[id]
	if !ok {
		v = m.vms[globalScriptID]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for script",
			zap.String("script", id),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return lua.LNil, nil
	}

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	cancel := limitState(v.L, v.limit)
	defer cancel()

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = ToLua(v.L, a)
	}
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, largs...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", id),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every loaded VM.
//
// Postcondition: subsequent CallHook calls return (LNil, nil).
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, id)
	}
}

func (m *Manager) intn(n int) int {
	m.srcMu.Lock()
	defer m.srcMu.Unlock()
	return m.src.Intn(n)
}
