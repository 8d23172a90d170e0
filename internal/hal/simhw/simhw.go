// Package simhw provides in-memory implementations of every hal
// capability. They back the unit tests and the sim codec backend of
// `picodeck run`.
package simhw

import (
	"strings"

	"github.com/picodeck/picodeck/internal/input"
)

// Pins is a digital input bank; asserted lines are set directly.
type Pins struct {
	Asserted map[int]bool
}

func NewPins() *Pins {
	return &Pins{Asserted: map[int]bool{}}
}

func (p *Pins) Read(pin int) bool {
	return p.Asserted[pin]
}

// Remote replays a queue of raw infrared codes, one per TryDecode.
type Remote struct {
	Codes   []uint32
	Resumed int
}

func (r *Remote) TryDecode() (uint32, bool) {
	if len(r.Codes) == 0 {
		return 0, false
	}
	code := r.Codes[0]
	r.Codes = r.Codes[1:]
	return code, true
}

func (r *Remote) Resume() {
	r.Resumed++
}

// Encoder is a rotary encoder with a directly settable position.
type Encoder struct {
	Pos int
}

func (e *Encoder) Position() int {
	return e.Pos
}

// Commands replays a scripted command stream and encoder deltas; it
// stands in for the Input Dispatcher in orchestrator tests.
type Commands struct {
	Script []input.Command
	Deltas []int
	Polls  int
}

func (c *Commands) Poll() input.Command {
	c.Polls++
	if len(c.Script) == 0 {
		return input.CmdNone
	}
	cmd := c.Script[0]
	c.Script = c.Script[1:]
	return cmd
}

func (c *Commands) EncoderDelta() int {
	if len(c.Deltas) == 0 {
		return 0
	}
	d := c.Deltas[0]
	c.Deltas = c.Deltas[1:]
	return d
}

// Display is a character screen captured into a rune grid.
type Display struct {
	Cols, Rows int
	cells      [][]rune
	col, row   int
	Clears     int
}

func NewDisplay(cols, rows int) *Display {
	d := &Display{Cols: cols, Rows: rows}
	d.Clear()
	d.Clears = 0
	return d
}

func (d *Display) Clear() {
	d.Clears++
	d.cells = make([][]rune, d.Rows)
	for r := range d.cells {
		d.cells[r] = []rune(strings.Repeat(" ", d.Cols))
	}
	d.col, d.row = 0, 0
}

func (d *Display) SetCursor(col, row int) {
	d.col, d.row = col, row
}

func (d *Display) Print(text string) {
	for _, r := range text {
		if d.row < 0 || d.row >= d.Rows || d.col < 0 || d.col >= d.Cols {
			return
		}
		d.cells[d.row][d.col] = r
		d.col++
	}
}

// Line returns the rendered content of one display row.
func (d *Display) Line(row int) string {
	if row < 0 || row >= d.Rows {
		return ""
	}
	return strings.TrimRight(string(d.cells[row]), " ")
}
