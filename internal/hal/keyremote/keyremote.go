// Package keyremote stands in for the infrared decoder on a host
// terminal: it puts stdin into raw mode and yields each key byte as a
// raw remote code, so the configured code table maps keys to commands.
package keyremote

import (
	"os"

	"golang.org/x/term"
)

type Remote struct {
	events  chan uint32
	restore func()
}

// Open switches stdin to raw mode. Ctrl+C is translated to an
// interrupt signal since raw mode swallows it.
func Open() (*Remote, error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	r := &Remote{
		events:  make(chan uint32, 8),
		restore: func() { _ = term.Restore(fd, old) },
	}
	go r.read()
	return r, nil
}

func (r *Remote) read() {
	var buf [1]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			close(r.events)
			return
		}
		if n != 1 {
			continue
		}
		if buf[0] == 0x03 { // Ctrl+C
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(os.Interrupt)
			}
			continue
		}
		select {
		case r.events <- uint32(buf[0]):
		default:
			// Drop bursts; the debounce window would discard them anyway.
		}
	}
}

func (r *Remote) TryDecode() (uint32, bool) {
	select {
	case code, ok := <-r.events:
		if !ok {
			return 0, false
		}
		return code, true
	default:
		return 0, false
	}
}

// Resume is a no-op: the keyboard needs no re-arming between decodes.
func (r *Remote) Resume() {}

func (r *Remote) Close() {
	r.restore()
}
