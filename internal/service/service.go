// Package service runs the controller's single-threaded control loop:
// it polls the input dispatcher, feeds the menu navigator, and hands
// control to the playback or recording orchestrator the user selects.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/picodeck/picodeck/internal/config"
	"github.com/picodeck/picodeck/internal/hal"
	"github.com/picodeck/picodeck/internal/input"
	"github.com/picodeck/picodeck/internal/menu"
	"github.com/picodeck/picodeck/internal/player"
	"github.com/picodeck/picodeck/internal/playlist"
	"github.com/picodeck/picodeck/internal/recorder"
)

// Service owns the control loop. Everything it touches is mutated
// from this one loop, synchronously, between input polls; there is no
// concurrent access to the codec or the volume.
type Service struct {
	cfg   *config.Config
	codec hal.Codec
	vol   hal.Volume
	disp  hal.Display
	in    player.CommandSource

	nav     *menu.Navigator
	list    *playlist.List
	builder *playlist.Builder
	player  *player.Player

	watcher *fsnotify.Watcher
	dirty   bool
	powered bool

	idle func()
}

func New(cfg *config.Config, codec hal.Codec, vol hal.Volume, in player.CommandSource, disp hal.Display) *Service {
	return &Service{
		cfg:     cfg,
		codec:   codec,
		vol:     vol,
		disp:    disp,
		in:      in,
		nav:     menu.New(menu.DefaultItems(), cfg.Display.Rows, disp),
		list:    playlist.NewList(cfg.Media.MaxTracks),
		builder: playlist.NewBuilder(vol, cfg.Media.Extensions),
		player:  player.New(codec, vol, in, disp),
		powered: true,
		idle:    func() { time.Sleep(5 * time.Millisecond) },
	}
}

// WatchMedia watches the media directory and marks the playlist dirty
// whenever its contents change; the rebuild happens between polls.
func (s *Service) WatchMedia(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating media watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	s.watcher = w
	return nil
}

// Playlist exposes the current playlist, for status commands.
func (s *Service) Playlist() *playlist.List {
	return s.list
}

// Run initializes the codec and playlist, then polls input until the
// context is cancelled. The menu machine has no terminal state.
func (s *Service) Run(ctx context.Context) error {
	if s.watcher != nil {
		defer s.watcher.Close()
	}

	if err := s.codec.Reset(); err != nil {
		return fmt.Errorf("initializing codec: %w", err)
	}
	s.applyVolume()

	if err := s.builder.Rebuild(s.list); err != nil {
		slog.Warn("initial playlist scan failed", "error", err)
	}
	slog.Info("controller ready", "tracks", s.list.Len())
	s.nav.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.pollWatcher()

		if cmd := s.in.Poll(); cmd != input.CmdNone {
			s.HandleCommand(cmd)
		}
		s.idle()
	}
}

// HandleCommand feeds one command through the menu navigator and
// dispatches whatever action it fires.
func (s *Service) HandleCommand(cmd input.Command) {
	if action, ok := s.nav.Handle(cmd); ok {
		s.dispatch(action)
	}
}

func (s *Service) dispatch(action menu.ActionID) {
	switch action {
	case menu.ActionPlayAll:
		if err := s.player.PlayAll(s.list); err != nil {
			slog.Error("playback failed", "error", err)
			s.message("Play failed")
		}
		s.nav.Reset()

	case menu.ActionPlayFile:
		if name, ok := s.promptTrackName(); ok {
			if err := s.player.PlayOne(name); err != nil {
				slog.Warn("playback failed", "name", name, "error", err)
				s.message("Play failed")
			}
		}
		s.nav.Reset()

	case menu.ActionRecord:
		s.record("")
		s.nav.Reset()

	case menu.ActionMonoMode:
		s.codec.SetMonoMode(!s.codec.MonoMode())

	case menu.ActionDifferential:
		s.codec.SetDifferential(!s.codec.Differential())

	case menu.ActionSineTest:
		s.sineTest()

	case menu.ActionMemoryTest:
		s.message(fmt.Sprintf("Mem %04X", s.codec.MemoryTest()))

	case menu.ActionResetCodec:
		if err := s.codec.Reset(); err != nil {
			if errors.Is(err, hal.ErrDeviceBusy) {
				s.message("Codec busy")
			} else {
				slog.Error("codec reset failed", "error", err)
			}
			return
		}
		s.applyVolume()

	case menu.ActionPower:
		if s.powered {
			s.codec.PowerOff()
		} else {
			s.codec.PowerOn()
			if err := s.codec.Reset(); err != nil {
				slog.Error("codec reset failed", "error", err)
			}
			s.applyVolume()
		}
		s.powered = !s.powered
	}
}

// Record runs one recording session under the given name ("" selects
// the next free auto-increment name), then rebuilds the playlist and
// reinitializes the codec: the recording handshake leaves the device
// unfit for immediate playback, and new files invalidate directory
// positions.
func (s *Service) Record(name string) error {
	return s.record(name)
}

func (s *Service) record(name string) error {
	if name == "" {
		name = s.nextRecordName()
	}

	src := recorder.SourceMic
	if s.cfg.Recording.Source == "line" {
		src = recorder.SourceLine
	}

	var runErr error
	sess, err := recorder.Start(s.codec, s.vol, s.in, s.disp, name, recorder.Config{
		Source: src,
		Plugin: s.cfg.Recording.Plugin,
	})
	if err != nil {
		slog.Error("recording setup failed", "name", name, "error", err)
		s.message(setupMessage(err))
		runErr = err
	} else if err := sess.Run(); err != nil {
		slog.Error("recording failed", "name", name, "error", err)
		s.message("Rec failed")
		runErr = err
	} else {
		slog.Info("recording saved", "name", name)
	}

	if err := s.codec.Reset(); err != nil {
		slog.Warn("codec reset after recording failed", "error", err)
	}
	s.applyVolume()
	if err := s.builder.Rebuild(s.list); err != nil {
		slog.Warn("playlist rescan after recording failed", "error", err)
	}
	return runErr
}

// nextRecordName returns the first free two-digit record name,
// wrapping back to record00.ogg once all hundred exist.
func (s *Service) nextRecordName() string {
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("record%02d.ogg", i)
		exists, err := s.vol.Exists(name)
		if err != nil {
			slog.Warn("probing record name", "name", name, "error", err)
			continue
		}
		if !exists {
			return name
		}
	}
	return "record00.ogg"
}

// promptTrackName collects a track number (1..999, typed with the
// select-index keys) and an extension (toggled with up/down), for the
// play-by-number action. Back cancels.
func (s *Service) promptTrackName() (string, bool) {
	num := 0
	typed := 0
	ext := "mp3"
	for {
		s.renderPrompt(num, typed, ext)

		cmd := s.in.Poll()
		if d, ok := cmd.Digit(); ok {
			if typed < 3 {
				num = num*10 + d
				typed++
			}
		} else {
			switch cmd {
			case input.CmdUp, input.CmdDown:
				if ext == "mp3" {
					ext = "ogg"
				} else {
					ext = "mp3"
				}
			case input.CmdConfirm:
				if num >= 1 && num <= 999 {
					return fmt.Sprintf("track%03d.%s", num, ext), true
				}
			case input.CmdBack:
				return "", false
			}
		}
		s.idle()
	}
}

func (s *Service) renderPrompt(num, typed int, ext string) {
	digits := "___"
	if typed > 0 {
		digits = fmt.Sprintf("%0*d%s", typed, num, "___"[typed:])
	}
	s.disp.Clear()
	s.disp.SetCursor(0, 0)
	s.disp.Print("Play track:")
	s.disp.SetCursor(0, 1)
	s.disp.Print("track" + digits + "." + ext)
}

// sineTest holds the codec in its sine self-test until the next input.
func (s *Service) sineTest() {
	s.message("Sine test")
	s.codec.SineTest(true)
	for s.in.Poll() == input.CmdNone {
		s.idle()
	}
	s.codec.SineTest(false)
}

func (s *Service) applyVolume() {
	v := uint8(s.cfg.Codec.Volume)
	s.codec.SetVolume(v, v)
}

func (s *Service) pollWatcher() {
	if s.watcher == nil {
		if s.dirty {
			s.dirty = false
			s.rebuild()
		}
		return
	}
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				s.watcher = nil
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.dirty = true
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.watcher = nil
				return
			}
			slog.Warn("media watch error", "error", err)
		default:
			if s.dirty {
				s.dirty = false
				s.rebuild()
			}
			return
		}
	}
}

func (s *Service) rebuild() {
	if err := s.builder.Rebuild(s.list); err != nil {
		slog.Warn("playlist rescan failed", "error", err)
		return
	}
	slog.Debug("playlist rescanned", "tracks", s.list.Len())
}

func (s *Service) message(text string) {
	s.disp.Clear()
	s.disp.SetCursor(0, 0)
	s.disp.Print(text)
}

func setupMessage(err error) string {
	switch {
	case errors.Is(err, recorder.ErrNoFilename):
		return "No filename"
	case errors.Is(err, recorder.ErrNoPlugin):
		return "No plugin"
	case errors.Is(err, recorder.ErrCannotCreateFile):
		return "File error"
	default:
		return "Rec failed"
	}
}
