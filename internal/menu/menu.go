// Package menu implements the action menu: a cursor over a fixed
// ordered list of actions, paged two at a time on the display.
package menu

import (
	"github.com/picodeck/picodeck/internal/hal"
	"github.com/picodeck/picodeck/internal/input"
)

// ActionID identifies one menu action.
type ActionID int

const (
	ActionPlayAll ActionID = iota
	ActionPlayFile
	ActionRecord
	ActionMonoMode
	ActionDifferential
	ActionSineTest
	ActionMemoryTest
	ActionResetCodec
	ActionPower
)

// Item is one menu entry.
type Item struct {
	Action ActionID
	Label  string
}

// DefaultItems is the controller's fixed action list.
func DefaultItems() []Item {
	return []Item{
		{ActionPlayAll, "Play all"},
		{ActionPlayFile, "Play file"},
		{ActionRecord, "Record"},
		{ActionMonoMode, "Mono mode"},
		{ActionDifferential, "Diff output"},
		{ActionSineTest, "Sine test"},
		{ActionMemoryTest, "Memory test"},
		{ActionResetCodec, "Reset codec"},
		{ActionPower, "Power"},
	}
}

// Navigator is the menu state machine. The counter addresses the
// top-displayed item; the row below always shows the next item,
// wrapping. The machine has no terminal state.
type Navigator struct {
	items   []Item
	rows    int
	counter int
	disp    hal.Display
}

func New(items []Item, rows int, disp hal.Display) *Navigator {
	if rows <= 0 {
		rows = 2
	}
	n := &Navigator{items: items, rows: rows, disp: disp}
	return n
}

func (n *Navigator) Counter() int {
	return n.counter
}

// Reset returns the cursor to the top and redraws.
func (n *Navigator) Reset() {
	n.counter = 0
	n.Refresh()
}

// Handle applies one command to the cursor, redraws the menu, and
// reports the action to dispatch, if any. A select-index command moves
// the cursor and fires the selected action in the same step; confirm
// fires the action under the cursor. Commands outside the navigation
// set reset the cursor to the top.
func (n *Navigator) Handle(cmd input.Command) (ActionID, bool) {
	size := len(n.items)
	fire := false

	if d, ok := cmd.Digit(); ok {
		n.counter = d % size
		fire = true
	} else {
		switch cmd {
		case input.CmdConfirm:
			fire = true
		case input.CmdUp:
			if n.counter == 0 {
				n.counter = size - 1
			} else {
				n.counter--
			}
		case input.CmdDown:
			n.counter = (n.counter + 1) % size
		case input.CmdLeft:
			// Wraps to the tail page, preserving row alignment.
			if n.counter >= n.rows {
				n.counter -= n.rows
			} else {
				n.counter = size - (n.rows - n.counter)
			}
		case input.CmdRight:
			n.counter = (n.counter + n.rows) % size
		default:
			n.counter = 0
		}
	}

	n.Refresh()
	if fire {
		return n.items[n.counter].Action, true
	}
	return 0, false
}

// Refresh redraws the two visible rows around the cursor.
func (n *Navigator) Refresh() {
	n.disp.Clear()
	n.disp.SetCursor(0, 0)
	n.disp.Print("> " + n.items[n.counter].Label)
	n.disp.SetCursor(0, 1)
	n.disp.Print("  " + n.items[(n.counter+1)%len(n.items)].Label)
}
