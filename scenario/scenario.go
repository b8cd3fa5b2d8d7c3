package scenario

import (
	"fmt"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lixenwraith/driftbox/constants"
	"github.com/lixenwraith/driftbox/engine"
)

// Run executes a Lua spawn script against the world. The VM lives for the
// duration of the call and is touched from this goroutine only, so scripts
// must run before the scheduler starts.
//
// The script sees:
//
//	spawn(x, y, vx, vy, symbol, health) -> id | nil, message
//	width() -> number
//	height() -> number
//	capacity() -> number
//
// vx, vy, symbol and health are optional. Omitted or non-positive health
// falls back to the default. A spawn against a full world returns nil and
// a message instead of raising, so the script decides whether to bail.
func Run(path string, world *engine.World, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	defer vm.Close()

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	spawned := 0
	vm.SetGlobal("spawn", vm.NewFunction(func(L *lua.LState) int {
		seed := engine.Seed{
			X:      float64(L.CheckNumber(1)),
			Y:      float64(L.CheckNumber(2)),
			VX:     float64(L.OptNumber(3, 0)),
			VY:     float64(L.OptNumber(4, 0)),
			Health: int32(L.OptInt(6, 0)),
		}
		if seed.Health <= 0 {
			seed.Health = constants.DefaultHealth
		}
		if sym := L.OptString(5, ""); sym != "" {
			r, _ := utf8.DecodeRuneInString(sym)
			seed.Symbol = r
		}

		id, err := world.Spawn(seed)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		spawned++
		log.Debug("scenario spawn",
			zap.Uint32("entity", uint32(id)),
			zap.Float64("x", seed.X),
			zap.Float64("y", seed.Y))
		L.Push(lua.LNumber(id))
		return 1
	}))

	vm.SetGlobal("width", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(world.Width()))
		return 1
	}))
	vm.SetGlobal("height", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(world.Height()))
		return 1
	}))
	vm.SetGlobal("capacity", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(world.Capacity()))
		return 1
	}))

	if err := vm.DoFile(path); err != nil {
		return spawned, fmt.Errorf("scenario %s: %w", path, err)
	}
	return spawned, nil
}
