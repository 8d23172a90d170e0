// Package recorder runs the recording pipeline: a fixed register
// handshake that arms the codec's on-chip encoder, then a polling
// drain loop that streams encoder words into a file until a
// multi-stage stop sequence completes.
package recorder

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/picodeck/picodeck/internal/hal"
	"github.com/picodeck/picodeck/internal/input"
)

// State is the recording session state machine.
type State int

const (
	StateRecording State = iota
	StateStopRequested
	StateDraining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateStopRequested:
		return "stop-requested"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Setup failure kinds. Each handshake step fails with a distinct
// error so the menu can report a short reason.
var (
	ErrNoFilename       = errors.New("no record filename")
	ErrNoPlugin         = errors.New("encoder overlay unavailable")
	ErrCannotCreateFile = errors.New("cannot create record file")
)

// Source selects the recording input.
type Source int

const (
	SourceMic Source = iota
	SourceLine
)

// Config fixes the session's input source, overlay file and ready-wait
// bound.
type Config struct {
	Source       Source
	Plugin       string
	ReadyTimeout time.Duration
}

// CommandSource is polled once per drain iteration; the first command
// observed while recording requests the stop sequence.
type CommandSource interface {
	Poll() input.Command
}

// Session is one recording run. It owns the open output file and is
// destroyed once Finished is reached and the file is closed.
type Session struct {
	codec hal.Codec
	in    CommandSource
	disp  hal.Display
	cfg   Config

	file    hal.File
	name    string
	state   State
	started time.Time

	idle func()
}

// Start performs the arming handshake and returns a live session in
// the Recording state. Every ready-line wait is bounded and tolerated
// on timeout; register and file failures abort with a distinct error.
func Start(codec hal.Codec, vol hal.Volume, in CommandSource, disp hal.Display, name string, cfg Config) (*Session, error) {
	if name == "" {
		return nil, ErrNoFilename
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = hal.DefaultReadyTimeout
	}

	// High-throughput clock for the encoder overlay.
	if err := codec.WriteRegister(hal.RegClockF, hal.ClockRecording); err != nil {
		return nil, fmt.Errorf("setting recording clock: %w", err)
	}
	waitReady(codec, cfg.ReadyTimeout)

	// Known register state before loading the overlay.
	if err := codec.WriteRegister(hal.RegBass, 0); err != nil {
		return nil, fmt.Errorf("clearing bass boost: %w", err)
	}
	if err := codec.Reset(); err != nil {
		return nil, fmt.Errorf("resetting codec: %w", err)
	}
	waitReady(codec, cfg.ReadyTimeout)

	// All interrupt sources off except the control interface.
	if err := codec.WriteRegister(hal.RegWRAMAddr, hal.IntEnableAddr); err != nil {
		return nil, fmt.Errorf("addressing interrupt enable: %w", err)
	}
	if err := codec.WriteRegister(hal.RegWRAM, hal.IntEnableControl); err != nil {
		return nil, fmt.Errorf("masking interrupts: %w", err)
	}

	if err := codec.LoadPatch(cfg.Plugin); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoPlugin, cfg.Plugin, err)
	}

	file, err := vol.Create(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCannotCreateFile, name, err)
	}

	mode := hal.ModeNative | hal.ModeEncode
	if cfg.Source == SourceLine {
		mode |= hal.ModeLine1
	}
	if err := codec.WriteRegister(hal.RegMode, mode); err != nil {
		file.Close()
		return nil, fmt.Errorf("selecting input source: %w", err)
	}

	// Manual recording level, unity gain, AGC disabled.
	if err := codec.WriteRegister(hal.RegAICtrl0, 1024); err != nil {
		file.Close()
		return nil, fmt.Errorf("setting recording level: %w", err)
	}
	if err := codec.WriteRegister(hal.RegAICtrl1, 1024); err != nil {
		file.Close()
		return nil, fmt.Errorf("setting recording gain: %w", err)
	}
	if err := codec.WriteRegister(hal.RegAICtrl2, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("disabling AGC: %w", err)
	}
	if err := codec.WriteRegister(hal.RegAICtrl3, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("clearing encoder control: %w", err)
	}

	// Activate the encoder overlay.
	if err := codec.WriteRegister(hal.RegAIAddr, hal.EncoderEntry); err != nil {
		file.Close()
		return nil, fmt.Errorf("starting encoder: %w", err)
	}
	waitReady(codec, cfg.ReadyTimeout)

	return &Session{
		codec:   codec,
		in:      in,
		disp:    disp,
		cfg:     cfg,
		file:    file,
		name:    name,
		state:   StateRecording,
		started: time.Now(),
		idle:    func() { time.Sleep(5 * time.Millisecond) },
	}, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Run drains encoder words into the file until the stop sequence
// completes, then closes the file and soft-resets the codec so the
// caller can reinitialize it for playback.
func (s *Session) Run() error {
	defer func() {
		if err := s.file.Close(); err != nil {
			slog.Warn("closing record file", "name", s.name, "error", err)
		}
		if err := s.codec.Reset(); err != nil {
			slog.Warn("resetting codec after recording", "error", err)
		}
	}()

	for s.state != StateFinished {
		s.renderElapsed()

		// The first command observed while recording requests the
		// stop sequence; this happens at most once.
		if cmd := s.in.Poll(); cmd != input.CmdNone && s.state == StateRecording {
			s.state = StateStopRequested
			if err := s.codec.WriteRegister(hal.RegAICtrl3, hal.Ctrl3StopRequest); err != nil {
				return fmt.Errorf("requesting encoder stop: %w", err)
			}
		}

		waiting, err := s.codec.ReadRegister(hal.RegHDAT1)
		if err != nil {
			return fmt.Errorf("reading words waiting: %w", err)
		}

		if s.state == StateStopRequested {
			status, err := s.codec.ReadRegister(hal.RegAICtrl3)
			if err != nil {
				return fmt.Errorf("reading encoder status: %w", err)
			}
			if status&hal.Ctrl3Stopped != 0 {
				s.state = StateDraining
				// The count may have moved while the encoder wound down.
				waiting, err = s.codec.ReadRegister(hal.RegHDAT1)
				if err != nil {
					return fmt.Errorf("reading words waiting: %w", err)
				}
			}
		}

		if err := s.drain(int(waiting)); err != nil {
			return err
		}

		s.idle()
	}
	return nil
}

// drain flushes buffered encoder words. While recording, only full
// blocks are taken; once draining, every remaining word is flushed and
// the last word is written under the final-byte rule.
func (s *Session) drain(waiting int) error {
	for {
		if s.state == StateDraining {
			if waiting == 0 {
				s.state = StateFinished
				return nil
			}
			if waiting < hal.RecordBlockWords {
				return s.finalBlock(waiting)
			}
		} else if waiting < hal.RecordBlockWords {
			return nil
		}

		if err := s.copyWords(hal.RecordBlockWords); err != nil {
			return err
		}
		waiting -= hal.RecordBlockWords
	}
}

// finalBlock handles the last partial block: all but the final word
// are copied normally, then the final word's high byte is always
// written while its low byte is written only if the encoder's status
// bit reports it as a valid sample rather than padding.
func (s *Session) finalBlock(waiting int) error {
	if err := s.copyWords(waiting - 1); err != nil {
		return err
	}
	s.state = StateFinished

	last, err := s.codec.ReadRegister(hal.RegHDAT0)
	if err != nil {
		return fmt.Errorf("reading final word: %w", err)
	}
	if _, err := s.file.Write([]byte{byte(last >> 8)}); err != nil {
		return fmt.Errorf("writing final word: %w", err)
	}

	// The status register is read twice; the vendor manual documents
	// the second read as the settled value.
	if _, err := s.codec.ReadRegister(hal.RegAICtrl3); err != nil {
		return fmt.Errorf("reading encoder status: %w", err)
	}
	status, err := s.codec.ReadRegister(hal.RegAICtrl3)
	if err != nil {
		return fmt.Errorf("reading encoder status: %w", err)
	}
	if status&hal.Ctrl3InvalidLastByte == 0 {
		if _, err := s.file.Write([]byte{byte(last)}); err != nil {
			return fmt.Errorf("writing final byte: %w", err)
		}
	}
	return nil
}

// copyWords reads n words from the encoder output register and writes
// them to the file, byte-split big-endian.
func (s *Session) copyWords(n int) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		w, err := s.codec.ReadRegister(hal.RegHDAT0)
		if err != nil {
			return fmt.Errorf("reading encoder data: %w", err)
		}
		buf = append(buf, byte(w>>8), byte(w))
	}
	if _, err := s.file.Write(buf); err != nil {
		return fmt.Errorf("writing record data: %w", err)
	}
	return nil
}

func (s *Session) renderElapsed() {
	t := time.Since(s.started)
	s.disp.SetCursor(0, 1)
	s.disp.Print(fmt.Sprintf("REC %02d:%02d", int(t.Minutes()), int(t.Seconds())%60))
}

func waitReady(codec hal.Codec, timeout time.Duration) {
	if !hal.WaitReady(codec, timeout) {
		slog.Debug("ready line did not assert, proceeding", "timeout", timeout)
	}
}
