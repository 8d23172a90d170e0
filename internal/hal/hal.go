// Package hal defines the capability contracts the controller core is
// written against: digital inputs, the remote decoder, the rotary
// encoder, the character display, the codec device and the storage
// volume. Implementations live in the subpackages (simhw, hostaudio,
// dirvol, termdisp, keyremote).
package hal

import (
	"errors"
	"io"
	"time"
)

// Device and file errors shared by backends.
var (
	// ErrNotReady reports a ready-line wait that timed out. Callers
	// tolerate it: the operation proceeds anyway.
	ErrNotReady = errors.New("codec not ready")

	// ErrDeviceBusy reports a codec addressed mid-reset.
	ErrDeviceBusy = errors.New("codec busy")

	// ErrDeviceInit reports a codec that failed to start an operation.
	ErrDeviceInit = errors.New("codec failed to start")

	// ErrMissingPatch reports an absent firmware overlay file.
	ErrMissingPatch = errors.New("firmware overlay not found")

	ErrFileNotFound   = errors.New("file not found")
	ErrCannotOpenFile = errors.New("cannot open file")
)

// DefaultReadyTimeout bounds a single ready-line wait.
const DefaultReadyTimeout = 100 * time.Millisecond

// PinReader reads a fixed set of digital switch lines. Lines are
// pull-up biased; Read reports true when the line is asserted (low).
type PinReader interface {
	Read(pin int) bool
}

// RemoteDecoder yields raw infrared codes. TryDecode never blocks;
// Resume re-arms the decoder after a code has been consumed.
type RemoteDecoder interface {
	TryDecode() (code uint32, ok bool)
	Resume()
}

// RotaryEncoder reports an absolute position; consumers track deltas.
type RotaryEncoder interface {
	Position() int
}

// Display is a small character screen addressed by column and row.
type Display interface {
	Clear()
	SetCursor(col, row int)
	Print(text string)
}

// PlayState is the codec's playback sub-state.
type PlayState int

const (
	PlayStateStopped PlayState = iota
	PlayStatePlaying
	PlayStatePaused
)

func (s PlayState) String() string {
	switch s {
	case PlayStateStopped:
		return "stopped"
	case PlayStatePlaying:
		return "playing"
	case PlayStatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Codec is the audio encode/decode device. Control and status flow
// through addressable registers; common playback operations are named.
type Codec interface {
	ReadRegister(addr uint8) (uint16, error)
	WriteRegister(addr uint8, value uint16) error

	// Ready reports the hardware ready line: the device can accept
	// the next register operation.
	Ready() bool

	StartTrack(name string, offset int64) error
	StopTrack()
	Playing() bool
	State() PlayState
	Pause()
	Resume()

	// Volume is a paired attenuation byte per channel; larger means
	// quieter.
	Volume() (left, right uint8)
	SetVolume(left, right uint8)

	PlaySpeed() uint16
	SetPlaySpeed(speed uint16)

	// DecodeTime is the elapsed time of the current track.
	DecodeTime() time.Duration

	MonoMode() bool
	SetMonoMode(on bool)
	Differential() bool
	SetDifferential(on bool)

	Reset() error
	PowerOn()
	PowerOff()

	SineTest(on bool)
	MemoryTest() uint16

	// LoadPatch loads a firmware overlay into codec RAM by filename.
	LoadPatch(name string) error
}

// Entry is one directory entry on the storage volume. Position is an
// opaque on-volume locator, stable until the directory is rewritten.
type Entry struct {
	Name     string
	Position uint32
}

// File is an open file on the storage volume.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// Volume is the removable storage volume.
type Volume interface {
	// Rewind resets directory traversal to the root.
	Rewind() error

	// NextEntry returns the next directory entry; ok is false once
	// the directory is exhausted.
	NextEntry() (entry Entry, ok bool, err error)

	// EntryAt reopens a directory entry by position.
	EntryAt(pos uint32) (Entry, error)

	// Open opens an existing file for reading.
	Open(name string) (File, error)

	// Create opens a file read-write, creating it if absent.
	Create(name string) (File, error)

	Exists(name string) (bool, error)
}

// WaitReady polls the codec ready line until it asserts or the timeout
// elapses, and reports whether the line asserted. Timing out is
// tolerated policy, not an error: boards without strict ready
// signaling still work, so callers log the miss and proceed.
func WaitReady(c Codec, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !c.Ready() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
