package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icbgo/icb/internal/mcode"
	"github.com/icbgo/icb/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngine(t *testing.T) (*Engine, *world.State, *mcode.Registry) {
	t.Helper()
	ws := world.NewState(nil)
	_, err := ws.AddObject(&world.Object{Name: "cord", Kind: world.KindMega})
	require.NoError(t, err)
	_, err = ws.AddObject(&world.Object{Name: "lift", Kind: world.KindProp})
	require.NoError(t, err)

	reg := mcode.NewRegistry(zap.NewNop())
	e := NewEngine(ws, zap.NewNop())
	t.Cleanup(e.Close)
	return e, ws, reg
}

func TestBoundOpcodesReturnResultAndCode(t *testing.T) {
	e, _, reg := testEngine(t)
	var got mcode.Params
	reg.Register("fn_echo", func(result *int32, p mcode.Params) mcode.Code {
		got = p
		*result = 7
		return mcode.Repeat
	})
	e.Bind(reg)

	require.NoError(t, e.DoString(`
		r, c = fn_echo(3, "chi", true)
		assert_ok = (r == 7 and c == IR_REPEAT)
	`))
	assert.Equal(t, mcode.Params{mcode.Int(3), mcode.Str("chi"), mcode.Int(1)}, got)
	ok := e.vm.GetGlobal("assert_ok")
	assert.Equal(t, "true", ok.String())
}

func TestTerminateRaises(t *testing.T) {
	e, _, reg := testEngine(t)
	reg.Register("fn_fatal", func(*int32, mcode.Params) mcode.Code { return mcode.Terminate })
	e.Bind(reg)

	require.NoError(t, e.DoString(`function init() fn_fatal() end`))
	assert.Error(t, e.Init())
}

func TestInitAndTickOptional(t *testing.T) {
	e, _, _ := testEngine(t)
	assert.NoError(t, e.Init())
	assert.NoError(t, e.Tick(1))

	require.NoError(t, e.DoString(`ticks = 0  function tick(n) ticks = n end`))
	require.NoError(t, e.Tick(5))
	assert.Equal(t, "5", e.vm.GetGlobal("ticks").String())
}

func TestLoadReadsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mission"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "a.lua"), []byte(`order = "core"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mission", "b.lua"), []byte(`order = order .. ",mission"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mission", "notes.txt"), []byte(`not lua`), 0o644))

	e, _, _ := testEngine(t)
	require.NoError(t, e.Load(dir))
	assert.Equal(t, "core,mission", e.vm.GetGlobal("order").String())
}

func TestSocketsAndGosub(t *testing.T) {
	e, ws, _ := testEngine(t)
	lift := ws.ByName("lift").ID
	require.NoError(t, e.DoString(`
		steps = 0
		objects.lift = {
			chi = function()
				steps = steps + 1
				coroutine.yield()
				steps = steps + 1
			end,
		}
	`))

	assert.True(t, e.HasSocket(lift, "chi"))
	assert.False(t, e.HasSocket(lift, "interact"))
	assert.False(t, e.HasSocket(ws.ByName("cord").ID, "chi"))
	assert.ErrorIs(t, e.StartGosub(lift, "interact"), ErrNoSocket)

	require.NoError(t, e.StartGosub(lift, "chi"))
	assert.True(t, e.GosubActive())

	done, err := e.StepGosub()
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "1", e.vm.GetGlobal("steps").String())

	done, err = e.StepGosub()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "2", e.vm.GetGlobal("steps").String())
	assert.False(t, e.GosubActive())
}

func TestGosubErrorEnds(t *testing.T) {
	e, ws, _ := testEngine(t)
	require.NoError(t, e.DoString(`objects.lift = { chi = function() error("jammed") end }`))
	require.NoError(t, e.StartGosub(ws.ByName("lift").ID, "chi"))

	done, err := e.StepGosub()
	assert.True(t, done)
	assert.Error(t, err)
	assert.False(t, e.GosubActive())
}
