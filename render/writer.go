package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Writer prints frames as plain text, one full grid per Present call.
// No cursor control: frames append to the stream, which suits headless
// runs, piping and tests.
type Writer struct {
	out    io.Writer
	width  int
	height int
}

func NewWriter(out io.Writer, width, height int) *Writer {
	return &Writer{out: out, width: width, height: height}
}

func (w *Writer) Present(f Frame) error {
	grid := make([][]rune, w.height)
	for y := range grid {
		row := make([]rune, w.width)
		for x := range row {
			row[x] = ' '
		}
		grid[y] = row
	}
	for _, en := range f.Entries {
		if en.X >= 0 && en.X < w.width && en.Y >= 0 && en.Y < w.height {
			grid[en.Y][en.X] = en.Symbol
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "frame %d\n", f.Seq)
	for _, row := range grid {
		buf.WriteString(string(row))
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat("-", w.width))
	buf.WriteByte('\n')

	for i, h := range f.Healths {
		if i == 10 {
			break
		}
		fmt.Fprintf(&buf, "[Entity %d] HP: %d | ", h.Entity, h.HP)
	}
	buf.WriteByte('\n')

	_, err := w.out.Write(buf.Bytes())
	return err
}

func (w *Writer) Close() {}
