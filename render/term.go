package render

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/driftbox/status"
)

var (
	styleEntity = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleChrome = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Terminal renders frames to a tcell screen: the fixed domain grid on
// top, a separator row, a health HUD and a metrics line below it.
// The domain stays width x height cells regardless of terminal size;
// tcell drops cells that fall off a smaller screen.
type Terminal struct {
	screen tcell.Screen
	width  int
	height int
	reg    *status.Registry
}

// NewTerminal creates and initializes the screen. The caller owns the
// returned sink and must Close it to restore the terminal.
func NewTerminal(width, height int, reg *status.Registry) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.Clear()

	return &Terminal{
		screen: screen,
		width:  width,
		height: height,
		reg:    reg,
	}, nil
}

// Screen exposes the underlying tcell screen for input polling and
// crash-time teardown.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

func (t *Terminal) Present(f Frame) error {
	t.screen.Clear()

	for _, en := range f.Entries {
		t.screen.SetContent(en.X, en.Y, en.Symbol, nil, styleEntity)
	}

	// Separator between domain and HUD
	for x := 0; x < t.width; x++ {
		t.screen.SetContent(x, t.height, '-', nil, styleChrome)
	}

	t.drawText(0, t.height+1, styleHUD, healthLine(f.Healths, t.width))
	t.drawText(0, t.height+2, styleChrome, t.metricsLine(f.Seq))

	t.screen.Show()
	return nil
}

func (t *Terminal) Close() {
	t.screen.Fini()
}

func (t *Terminal) drawText(x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= t.width {
			break
		}
		t.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// metricsLine compacts every counter into one chrome row.
func (t *Terminal) metricsLine(seq uint64) string {
	line := fmt.Sprintf("frame %d", seq)
	t.reg.Ints.Range(func(key string, ptr *atomic.Int64) {
		line += fmt.Sprintf(" %s=%d", key, ptr.Load())
	})
	return line
}

// healthLine formats as many health entries as fit the row.
func healthLine(healths []HealthEntry, width int) string {
	line := "HP |"
	for _, h := range healths {
		next := fmt.Sprintf(" %d:%d", h.Entity, h.HP)
		if len(line)+len(next) > width {
			break
		}
		line += next
	}
	return line
}
