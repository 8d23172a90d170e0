// Package termdisp renders the character display as a bordered box on
// the terminal, redrawn in place.
package termdisp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Display struct {
	cols, rows int
	cells      [][]rune
	col, row   int

	out   io.Writer
	style lipgloss.Style
	drawn bool
}

func New(cols, rows int) *Display {
	d := &Display{
		cols:  cols,
		rows:  rows,
		out:   os.Stdout,
		style: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
	d.reset()
	return d
}

func (d *Display) reset() {
	d.cells = make([][]rune, d.rows)
	for r := range d.cells {
		d.cells[r] = []rune(strings.Repeat(" ", d.cols))
	}
	d.col, d.row = 0, 0
}

func (d *Display) Clear() {
	d.reset()
	d.render()
}

func (d *Display) SetCursor(col, row int) {
	d.col, d.row = col, row
}

func (d *Display) Print(text string) {
	for _, r := range text {
		if d.row < 0 || d.row >= d.rows || d.col < 0 || d.col >= d.cols {
			break
		}
		d.cells[d.row][d.col] = r
		d.col++
	}
	d.render()
}

func (d *Display) render() {
	lines := make([]string, d.rows)
	for r := range d.cells {
		lines[r] = string(d.cells[r])
	}
	box := d.style.Render(strings.Join(lines, "\n"))
	height := d.rows + 2 // content plus border
	if d.drawn {
		fmt.Fprintf(d.out, "\033[%dA\r", height)
	}
	fmt.Fprintln(d.out, box)
	d.drawn = true
}
