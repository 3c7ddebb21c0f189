package mcode

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Func is the signature of every opcode.
type Func func(result *int32, params Params) Code

// Registry maps opcode names to handlers. Built once at startup.
type Registry struct {
	handlers map[string]Func
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Func),
		log:      log,
	}
}

// Register binds an opcode name. Registering a name twice is a wiring bug.
func (reg *Registry) Register(name string, fn Func) {
	if _, dup := reg.handlers[name]; dup {
		panic(fmt.Sprintf("mcode: opcode %q registered twice", name))
	}
	reg.handlers[name] = fn
}

// Has reports whether name is bound.
func (reg *Registry) Has(name string) bool {
	_, ok := reg.handlers[name]
	return ok
}

// Call runs an opcode. Unknown names terminate the calling script.
func (reg *Registry) Call(name string, params Params) (int32, Code) {
	fn, ok := reg.handlers[name]
	if !ok {
		reg.log.Error("unknown opcode", zap.String("opcode", name))
		return 0, Terminate
	}
	reg.log.Debug("opcode",
		zap.String("opcode", name),
		zap.Stringers("params", []Value(params)),
	)
	return reg.safeCall(name, fn, params)
}

// safeCall runs a handler with panic recovery so one bad opcode can't take
// down the game loop.
func (reg *Registry) safeCall(name string, fn Func, params Params) (result int32, code Code) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("opcode panic recovered",
				zap.String("opcode", name),
				zap.Any("panic", rec),
			)
			result, code = 0, Terminate
		}
	}()
	code = fn(&result, params)
	return result, code
}

// Names returns every bound opcode, sorted.
func (reg *Registry) Names() []string {
	out := make([]string, 0, len(reg.handlers))
	for n := range reg.handlers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
