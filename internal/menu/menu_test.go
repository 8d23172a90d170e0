package menu

import (
	"strings"
	"testing"

	"github.com/picodeck/picodeck/internal/hal/simhw"
	"github.com/picodeck/picodeck/internal/input"
)

func newNavigator() (*Navigator, *simhw.Display) {
	disp := simhw.NewDisplay(16, 2)
	return New(DefaultItems(), 2, disp), disp
}

func TestUpDownWrap(t *testing.T) {
	t.Parallel()

	n, _ := newNavigator()
	size := len(DefaultItems())

	n.Handle(input.CmdUp)
	if n.Counter() != size-1 {
		t.Fatalf("up from 0: expected %d, got %d", size-1, n.Counter())
	}
	n.Handle(input.CmdDown)
	if n.Counter() != 0 {
		t.Fatalf("down from %d: expected wrap to 0, got %d", size-1, n.Counter())
	}
}

func TestLeftRightAreInverse(t *testing.T) {
	t.Parallel()

	size := len(DefaultItems())
	for start := 0; start < size; start++ {
		n, _ := newNavigator()
		for i := 0; i < start; i++ {
			n.Handle(input.CmdDown)
		}
		n.Handle(input.CmdLeft)
		n.Handle(input.CmdRight)
		// With size 9 and 2 rows the page wrap shifts alignment for
		// the cursors that wrap past an edge; all others must return.
		left := start - 2
		if left < 0 {
			left = size - (2 - start)
		}
		want := (left + 2) % size
		if n.Counter() != want {
			t.Errorf("start %d: left+right gave %d, want %d", start, n.Counter(), want)
		}
	}
}

func TestLeftWrapFormulaAtEdges(t *testing.T) {
	t.Parallel()

	size := len(DefaultItems())

	n, _ := newNavigator()
	n.Handle(input.CmdLeft) // counter 0 -> size - 2
	if n.Counter() != size-2 {
		t.Fatalf("left from 0: expected %d, got %d", size-2, n.Counter())
	}

	n, _ = newNavigator()
	n.Handle(input.CmdUp) // counter = size-1
	n.Handle(input.CmdLeft)
	if n.Counter() != size-3 {
		t.Fatalf("left from %d: expected %d, got %d", size-1, size-3, n.Counter())
	}
}

func TestSelectIndexFiresOnce(t *testing.T) {
	t.Parallel()

	n, _ := newNavigator()
	action, fired := n.Handle(input.Digit(3))
	if !fired {
		t.Fatal("select-3 should fire the bound action")
	}
	if n.Counter() != 3 {
		t.Fatalf("select-3: expected counter 3, got %d", n.Counter())
	}
	if action != DefaultItems()[3].Action {
		t.Fatalf("select-3: wrong action %d", action)
	}
}

func TestSelectIndexWrapsModuloSize(t *testing.T) {
	t.Parallel()

	n, _ := newNavigator()
	_, fired := n.Handle(input.Digit(9)) // 9 items: digit 9 wraps to 0
	if !fired || n.Counter() != 0 {
		t.Fatalf("select-9: expected fire at counter 0, got fired=%v counter=%d", fired, n.Counter())
	}
}

func TestConfirmFiresCursorAction(t *testing.T) {
	t.Parallel()

	n, _ := newNavigator()
	n.Handle(input.CmdDown)
	action, fired := n.Handle(input.CmdConfirm)
	if !fired || action != ActionPlayFile {
		t.Fatalf("expected play-file to fire, got fired=%v action=%d", fired, action)
	}
	if n.Counter() != 1 {
		t.Fatalf("confirm must not move the cursor, got %d", n.Counter())
	}
}

func TestOtherCommandsResetCursor(t *testing.T) {
	t.Parallel()

	n, _ := newNavigator()
	n.Handle(input.CmdDown)
	n.Handle(input.CmdDown)
	if _, fired := n.Handle(input.CmdMute); fired {
		t.Fatal("mute must not fire a menu action")
	}
	if n.Counter() != 0 {
		t.Fatalf("expected cursor reset, got %d", n.Counter())
	}
}

func TestRefreshShowsCursorAndNextItem(t *testing.T) {
	t.Parallel()

	n, disp := newNavigator()
	n.Handle(input.CmdDown)

	if got := disp.Line(0); !strings.HasPrefix(got, "> Play file") {
		t.Errorf("row 0 = %q, want cursor on Play file", got)
	}
	if got := disp.Line(1); !strings.HasPrefix(got, "  Record") {
		t.Errorf("row 1 = %q, want Record", got)
	}

	// From the last item the second row wraps to the first.
	n.Reset()
	n.Handle(input.CmdUp)
	if got := disp.Line(1); !strings.HasPrefix(got, "  Play all") {
		t.Errorf("row 1 after wrap = %q, want Play all", got)
	}
}
