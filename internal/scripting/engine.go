package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoSocket is returned when a gosub names a socket the object lacks.
var ErrNoSocket = errors.New("no such interact socket")

// Engine wraps the gopher-lua VM that runs mission and object scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	world *world.State
	log   *zap.Logger

	gosub *gosub
}

// gosub is an interact socket running as a coroutine, resumed once per tick.
type gosub struct {
	object world.ObjectID
	socket string
	co     *lua.LState
	fn     *lua.LFunction
}

// script subdirectories, loaded in this order
var scriptDirs = []string{"core", "objects", "mission"}

// NewEngine creates the VM with the base globals. Opcodes are bound with
// Bind and scripts loaded with Load.
func NewEngine(ws *world.State, log *zap.Logger) *Engine {
	vm := lua.NewState()
	e := &Engine{vm: vm, world: ws, log: log}

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	for name, code := range map[string]mcode.Code{
		"IR_CONT":      mcode.Continue,
		"IR_REPEAT":    mcode.Repeat,
		"IR_GOSUB":     mcode.Gosub,
		"IR_STOP":      mcode.Stop,
		"IR_TERMINATE": mcode.Terminate,
	} {
		vm.SetGlobal(name, lua.LNumber(code))
	}
	vm.SetGlobal("objects", vm.NewTable())
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLog))
	return e
}

// Bind exposes every opcode as a Lua global returning (result, code).
// An opcode that terminates raises a Lua error, ending the calling script.
func (e *Engine) Bind(reg *mcode.Registry) {
	for _, name := range reg.Names() {
		name := name
		e.vm.SetGlobal(name, e.vm.NewFunction(func(L *lua.LState) int {
			params := make(mcode.Params, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				params = append(params, toValue(L.Get(i)))
			}
			res, code := reg.Call(name, params)
			if code == mcode.Terminate {
				L.RaiseError("%s: terminated", name)
				return 0
			}
			L.Push(lua.LNumber(res))
			L.Push(lua.LNumber(code))
			return 2
		}))
	}
}

func toValue(v lua.LValue) mcode.Value {
	switch lv := v.(type) {
	case lua.LNumber:
		return mcode.Int(int32(lv))
	case lua.LString:
		return mcode.Str(string(lv))
	case lua.LBool:
		if lv {
			return mcode.Int(1)
		}
		return mcode.Int(0)
	}
	return mcode.Int(0)
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}

// Load runs every .lua file under the scripts directory's core, objects
// and mission subdirectories. Missing directories are skipped.
func (e *Engine) Load(scriptsDir string) error {
	for _, sub := range scriptDirs {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			return fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return nil
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

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Init calls the mission's init() once, if defined.
func (e *Engine) Init() error {
	return e.callOptional("init")
}

// Tick calls the mission's tick(n) hook, if defined.
func (e *Engine) Tick(n int) error {
	return e.callOptional("tick", lua.LNumber(n))
}

func (e *Engine) callOptional(name string, args ...lua.LValue) error {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}
	return nil
}

// ===== Interact sockets =====

func (e *Engine) socketFunc(id world.ObjectID, socket string) *lua.LFunction {
	o := e.world.Object(id)
	if o == nil {
		return nil
	}
	objs, ok := e.vm.GetGlobal("objects").(*lua.LTable)
	if !ok {
		return nil
	}
	t, ok := objs.RawGetString(o.Name).(*lua.LTable)
	if !ok {
		return nil
	}
	fn, _ := t.RawGetString(socket).(*lua.LFunction)
	return fn
}

// HasSocket reports whether objects.<name>.<socket> is a function.
func (e *Engine) HasSocket(id world.ObjectID, socket string) bool {
	return e.socketFunc(id, socket) != nil
}

// StartGosub prepares socket to run as a coroutine. It replaces any gosub
// still in progress.
func (e *Engine) StartGosub(id world.ObjectID, socket string) error {
	fn := e.socketFunc(id, socket)
	if fn == nil {
		return fmt.Errorf("gosub %d.%s: %w", id, socket, ErrNoSocket)
	}
	e.stopGosub()
	co, _ := e.vm.NewThread()
	e.gosub = &gosub{object: id, socket: socket, co: co, fn: fn}
	e.log.Debug("gosub started", zap.Int32("object", int32(id)), zap.String("socket", socket))
	return nil
}

// StepGosub resumes the running gosub once. It reports true when the
// sub-script has returned (or there was none).
func (e *Engine) StepGosub() (bool, error) {
	g := e.gosub
	if g == nil {
		return true, nil
	}
	st, err, _ := e.vm.Resume(g.co, g.fn)
	switch st {
	case lua.ResumeYield:
		return false, nil
	case lua.ResumeError:
		e.stopGosub()
		return true, fmt.Errorf("gosub %s: %w", g.socket, err)
	}
	e.stopGosub()
	return true, nil
}

func (e *Engine) GosubActive() bool { return e.gosub != nil }

func (e *Engine) stopGosub() {
	e.gosub = nil
}

// Reset drops a running gosub at a session boundary.
func (e *Engine) Reset() {
	e.stopGosub()
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.stopGosub()
	e.vm.Close()
}
