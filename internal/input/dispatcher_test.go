package input

import (
	"testing"
	"time"

	"github.com/picodeck/picodeck/internal/hal"
)

func testConfig() Config {
	return Config{
		Switches: []SwitchBinding{
			{Pin: 14, Command: CmdConfirm},
			{Pin: 15, Command: CmdDown},
		},
		RemoteMask: 0xff,
		RemoteCodes: map[uint32]Command{
			0x77: CmdUp,
			0x73: CmdDown,
			0x0d: CmdConfirm,
		},
		Debounce: 200 * time.Millisecond,
	}
}

// Local capability fakes; the shared simhw package cannot be used
// here since it consumes this package's Command type.
type fakePins struct {
	asserted map[int]bool
}

func newFakePins() *fakePins {
	return &fakePins{asserted: map[int]bool{}}
}

func (p *fakePins) Read(pin int) bool {
	return p.asserted[pin]
}

type fakeRemote struct {
	codes   []uint32
	resumed int
}

func (r *fakeRemote) TryDecode() (uint32, bool) {
	if len(r.codes) == 0 {
		return 0, false
	}
	code := r.codes[0]
	r.codes = r.codes[1:]
	return code, true
}

func (r *fakeRemote) Resume() {
	r.resumed++
}

type fakeEncoder struct {
	pos int
}

func (e *fakeEncoder) Position() int {
	return e.pos
}

// fakeClock lets tests step the dispatcher's debounce window.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestDispatcher(pins hal.PinReader, remote hal.RemoteDecoder, enc hal.RotaryEncoder) (*Dispatcher, *fakeClock) {
	d := New(pins, remote, enc, testConfig())
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d.now = clock.now
	return d, clock
}

func TestPollReturnsNoneWithoutInput(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(newFakePins(), &fakeRemote{}, nil)
	if got := d.Poll(); got != CmdNone {
		t.Fatalf("expected none, got %s", got)
	}
}

func TestPollMapsSwitches(t *testing.T) {
	t.Parallel()

	pins := newFakePins()
	pins.asserted[15] = true
	d, _ := newTestDispatcher(pins, &fakeRemote{}, nil)

	if got := d.Poll(); got != CmdDown {
		t.Fatalf("expected navigate-down from pin 15, got %s", got)
	}
}

func TestRemoteOverridesSwitches(t *testing.T) {
	t.Parallel()

	pins := newFakePins()
	pins.asserted[14] = true
	remote := &fakeRemote{codes: []uint32{0x77}}
	d, _ := newTestDispatcher(pins, remote, nil)

	if got := d.Poll(); got != CmdUp {
		t.Fatalf("expected remote navigate-up to win, got %s", got)
	}
	if remote.resumed != 1 {
		t.Fatalf("expected decoder re-armed once, got %d", remote.resumed)
	}
}

func TestRemoteMaskFoldsRepeatVariant(t *testing.T) {
	t.Parallel()

	// 0x8077 is the repeat-flagged variant of 0x77.
	remote := &fakeRemote{codes: []uint32{0x8077}}
	d, _ := newTestDispatcher(newFakePins(), remote, nil)

	if got := d.Poll(); got != CmdUp {
		t.Fatalf("expected repeat variant to fold to navigate-up, got %s", got)
	}
}

func TestDebounceSuppressesBursts(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{codes: []uint32{0x0d, 0x0d, 0x0d}}
	d, clock := newTestDispatcher(newFakePins(), remote, nil)

	if got := d.Poll(); got != CmdConfirm {
		t.Fatalf("first press: expected confirm, got %s", got)
	}
	clock.advance(50 * time.Millisecond)
	if got := d.Poll(); got != CmdNone {
		t.Fatalf("burst within debounce window: expected none, got %s", got)
	}
	clock.advance(200 * time.Millisecond)
	if got := d.Poll(); got != CmdConfirm {
		t.Fatalf("after debounce window: expected confirm, got %s", got)
	}
}

func TestUnknownRemoteCodeIsIgnored(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{codes: []uint32{0x42}}
	d, _ := newTestDispatcher(newFakePins(), remote, nil)

	if got := d.Poll(); got != CmdNone {
		t.Fatalf("expected unknown code to be ignored, got %s", got)
	}
}

func TestEncoderDelta(t *testing.T) {
	t.Parallel()

	enc := &fakeEncoder{pos: 5}
	d, _ := newTestDispatcher(newFakePins(), &fakeRemote{}, enc)

	// First read establishes the baseline.
	if got := d.EncoderDelta(); got != 0 {
		t.Fatalf("baseline read: expected 0, got %d", got)
	}
	enc.pos = 8
	if got := d.EncoderDelta(); got != 3 {
		t.Fatalf("expected delta 3, got %d", got)
	}
	enc.pos = 6
	if got := d.EncoderDelta(); got != -2 {
		t.Fatalf("expected delta -2, got %d", got)
	}
}

func TestEncoderDeltaWithoutEncoder(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(newFakePins(), &fakeRemote{}, nil)
	if got := d.EncoderDelta(); got != 0 {
		t.Fatalf("expected 0 without encoder, got %d", got)
	}
}
