package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lixenwraith/driftbox/core"
)

// TestWriterGridLayout tests frame rasterization: grid rows, separator,
// health line
func TestWriterGridLayout(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, 5, 3)

	frame := Frame{
		Seq: 1,
		Entries: []DrawEntry{
			{Symbol: '@', X: 1, Y: 0},
			{Symbol: 'M', X: 4, Y: 2},
		},
		Healths: []HealthEntry{
			{Entity: 0, HP: 100},
			{Entity: 1, HP: 50},
		},
	}
	if err := w.Present(frame); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if len(lines) < 6 {
		t.Fatalf("Expected at least 6 output lines, got %d", len(lines))
	}
	if lines[0] != "frame 1" {
		t.Errorf("Expected frame header, got %q", lines[0])
	}
	if lines[1] != " @   " {
		t.Errorf("Expected row 0 to hold '@' at x=1, got %q", lines[1])
	}
	if lines[2] != "     " {
		t.Errorf("Expected empty row 1, got %q", lines[2])
	}
	if lines[3] != "    M" {
		t.Errorf("Expected row 2 to hold 'M' at x=4, got %q", lines[3])
	}
	if lines[4] != "-----" {
		t.Errorf("Expected separator row, got %q", lines[4])
	}
	if !strings.Contains(lines[5], "[Entity 0] HP: 100") || !strings.Contains(lines[5], "[Entity 1] HP: 50") {
		t.Errorf("Expected health line with both entities, got %q", lines[5])
	}
}

// TestWriterSkipsOutOfDomain tests that stray coordinates never panic
// or print outside the grid
func TestWriterSkipsOutOfDomain(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, 4, 2)

	frame := Frame{
		Seq: 2,
		Entries: []DrawEntry{
			{Symbol: 'X', X: -1, Y: 0},
			{Symbol: 'Y', X: 0, Y: 5},
			{Symbol: 'Z', X: 9, Y: 1},
		},
	}
	if err := w.Present(frame); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	for _, symbol := range []string{"X", "Y", "Z"} {
		if strings.Contains(out.String(), symbol) {
			t.Errorf("Out-of-domain symbol %s leaked into output", symbol)
		}
	}
}

// TestWriterHealthLineCap tests that only the first 10 entities report
// health, matching the console HUD layout
func TestWriterHealthLineCap(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, 4, 2)

	frame := Frame{Seq: 3}
	for i := 0; i < 15; i++ {
		frame.Healths = append(frame.Healths, HealthEntry{Entity: core.Entity(i), HP: 100})
	}
	if err := w.Present(frame); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	if strings.Contains(out.String(), "[Entity 9]") == false {
		t.Error("Expected entity 9 on the health line")
	}
	if strings.Contains(out.String(), "[Entity 10]") {
		t.Error("Expected health line to stop after 10 entities")
	}
}
