package input

import (
	"time"

	"github.com/picodeck/picodeck/internal/hal"
)

// DefaultDebounce suppresses mechanical and infrared repeat bursts
// after an accepted press.
const DefaultDebounce = 200 * time.Millisecond

// SwitchBinding maps one digital switch line to a command.
type SwitchBinding struct {
	Pin     int
	Command Command
}

// Config fixes the dispatcher's switch table, remote code table and
// debounce window.
type Config struct {
	Switches []SwitchBinding

	// RemoteMask folds "pressed" and "pressed-with-repeat-flag"
	// variants of the same key onto one table entry.
	RemoteMask  uint32
	RemoteCodes map[uint32]Command

	Debounce time.Duration
}

// Dispatcher polls the digital switches and the remote decoder each
// cycle and normalizes both into the Command space. The remote takes
// priority over switches; a debounce window follows every accepted
// press. The rotary encoder, when present, is read separately by
// position delta and bypasses the Command stream entirely.
type Dispatcher struct {
	pins    hal.PinReader
	remote  hal.RemoteDecoder
	encoder hal.RotaryEncoder
	cfg     Config

	now        func() time.Time
	nextAccept time.Time
	lastPos    int
	havePos    bool
}

// New builds a dispatcher. encoder may be nil on boards without one.
func New(pins hal.PinReader, remote hal.RemoteDecoder, encoder hal.RotaryEncoder, cfg Config) *Dispatcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Dispatcher{
		pins:    pins,
		remote:  remote,
		encoder: encoder,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Poll performs one input cycle: scan the switch lines for a tentative
// result, attempt one remote decode (which overrides the switches),
// then gate the result through the debounce window.
func (d *Dispatcher) Poll() Command {
	cmd := CmdNone
	if d.pins != nil {
		for _, sw := range d.cfg.Switches {
			if d.pins.Read(sw.Pin) {
				cmd = sw.Command
				break
			}
		}
	}

	if d.remote != nil {
		if code, ok := d.remote.TryDecode(); ok {
			d.remote.Resume()
			if mapped, ok := d.cfg.RemoteCodes[code&d.cfg.RemoteMask]; ok {
				cmd = mapped
			}
		}
	}

	if cmd == CmdNone {
		return CmdNone
	}
	if d.now().Before(d.nextAccept) {
		return CmdNone
	}
	d.nextAccept = d.now().Add(d.cfg.Debounce)
	return cmd
}

// EncoderDelta returns the rotary encoder movement since the previous
// call, or 0 when no encoder is fitted.
func (d *Dispatcher) EncoderDelta() int {
	if d.encoder == nil {
		return 0
	}
	pos := d.encoder.Position()
	if !d.havePos {
		d.havePos = true
		d.lastPos = pos
		return 0
	}
	delta := pos - d.lastPos
	d.lastPos = pos
	return delta
}
