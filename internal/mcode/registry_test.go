package mcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCallReturnsResultAndCode(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register("fn_add", func(result *int32, p Params) Code {
		*result = p.Int(0) + p.Int(1)
		return Continue
	})

	res, code := reg.Call("fn_add", Params{Int(2), Int(40)})
	assert.Equal(t, int32(42), res)
	assert.Equal(t, Continue, code)
	assert.Equal(t, []string{"fn_add"}, reg.Names())
}

func TestCallUnknownTerminates(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	_, code := reg.Call("fn_missing", nil)
	assert.Equal(t, Terminate, code)
}

func TestCallRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register("fn_boom", func(*int32, Params) Code { panic("boom") })

	var code Code
	assert.NotPanics(t, func() { _, code = reg.Call("fn_boom", nil) })
	assert.Equal(t, Terminate, code)
}

func TestRegisterTwicePanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	fn := func(*int32, Params) Code { return Continue }
	reg.Register("fn_x", fn)
	assert.Panics(t, func() { reg.Register("fn_x", fn) })
}

func TestParamsConversions(t *testing.T) {
	p := Params{Str("12"), Int(7), Str("chi")}
	assert.Equal(t, int32(12), p.Int(0))
	assert.Equal(t, "7", p.Str(1))
	assert.Equal(t, "chi", p.Str(2))
	assert.Equal(t, int32(0), p.Int(5), "missing args read as zero")
	assert.Equal(t, "", p.Str(5))
	assert.True(t, p.Bool(1))
}
