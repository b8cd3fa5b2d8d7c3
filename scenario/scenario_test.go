package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lixenwraith/driftbox/core"
	"github.com/lixenwraith/driftbox/engine"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// TestScenarioSpawns tests that a script populates the world through the
// spawn global, with optional arguments falling back to defaults.
func TestScenarioSpawns(t *testing.T) {
	world := engine.NewWorld(16, 80, 25)
	path := writeScript(t, `
spawn(10, 5, 0.5, 0.2, "@", 80)
spawn(20, 10)
for i = 1, 3 do
	spawn(30 + i, 12, -0.1, 0, "m", 40)
end
`)

	n, err := Run(path, world, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 spawns, got %d", n)
	}
	if world.Count() != 5 {
		t.Errorf("Expected world count 5, got %d", world.Count())
	}

	tr := world.Transforms(world.PublishedIndex())
	vel := world.Velocities()
	if tr[0].X != 10 || tr[0].Y != 5 {
		t.Errorf("Expected entity 0 at (10, 5), got (%v, %v)", tr[0].X, tr[0].Y)
	}
	if vel[0].VX != 0.5 || vel[0].VY != 0.2 {
		t.Errorf("Expected entity 0 velocity (0.5, 0.2), got (%v, %v)", vel[0].VX, vel[0].VY)
	}
	if world.Symbol(core.Entity(0)) != '@' {
		t.Errorf("Expected entity 0 symbol '@', got %q", world.Symbol(core.Entity(0)))
	}
	if world.Health(core.Entity(0)) != 80 {
		t.Errorf("Expected entity 0 health 80, got %d", world.Health(core.Entity(0)))
	}

	// Entity 1 used only the required arguments.
	if vel[1].VX != 0 || vel[1].VY != 0 {
		t.Errorf("Expected entity 1 at rest, got (%v, %v)", vel[1].VX, vel[1].VY)
	}
	if world.Symbol(core.Entity(1)) != engine.SymbolNone {
		t.Errorf("Expected entity 1 without symbol, got %q", world.Symbol(core.Entity(1)))
	}
	if world.Health(core.Entity(1)) != 100 {
		t.Errorf("Expected entity 1 default health 100, got %d", world.Health(core.Entity(1)))
	}
}

// TestScenarioDomainGlobals tests that scripts can read the world
// dimensions through width, height and capacity.
func TestScenarioDomainGlobals(t *testing.T) {
	world := engine.NewWorld(8, 16, 8)
	path := writeScript(t, `
if width() ~= 16 then error("bad width") end
if height() ~= 8 then error("bad height") end
if capacity() ~= 8 then error("bad capacity") end
spawn(width() - 1, height() - 1)
`)

	n, err := Run(path, world, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 spawn, got %d", n)
	}
	tr := world.Transforms(world.PublishedIndex())
	if tr[0].X != 15 || tr[0].Y != 7 {
		t.Errorf("Expected spawn at (15, 7), got (%v, %v)", tr[0].X, tr[0].Y)
	}
}

// TestScenarioCapacityError tests that a spawn against a full world hands
// the script nil plus a message instead of aborting the run.
func TestScenarioCapacityError(t *testing.T) {
	world := engine.NewWorld(2, 80, 25)
	path := writeScript(t, `
spawn(1, 1)
spawn(2, 2)
local id, msg = spawn(3, 3)
if id ~= nil then error("expected nil id on full world") end
if msg == nil then error("expected a message on full world") end
`)

	n, err := Run(path, world, zap.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 spawns, got %d", n)
	}
	if world.Count() != 2 {
		t.Errorf("Expected world count 2, got %d", world.Count())
	}
}

// TestScenarioScriptError tests that script failures come back as errors
// carrying the script path.
func TestScenarioScriptError(t *testing.T) {
	world := engine.NewWorld(4, 80, 25)
	path := writeScript(t, `error("boom")`)

	if _, err := Run(path, world, zap.NewNop()); err == nil {
		t.Error("Expected an error from a failing script")
	} else if !strings.Contains(err.Error(), path) {
		t.Errorf("Expected error to name the script, got %v", err)
	}

	if _, err := Run(filepath.Join(t.TempDir(), "missing.lua"), world, zap.NewNop()); err == nil {
		t.Error("Expected an error for a missing script")
	}
}
