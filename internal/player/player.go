// Package player drives track playback: it owns the play cursor into
// the playlist, starts and stops codec tracks, and interprets the live
// playback command set (skip, pause, restart, mute, speed, volume).
package player

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/picodeck/picodeck/internal/hal"
	"github.com/picodeck/picodeck/internal/input"
	"github.com/picodeck/picodeck/internal/playlist"
)

// Volume law constants. The effective level is a single byte where
// larger means quieter; both channels are always set equal.
const (
	// VolumeStep is applied per volume command or encoder detent.
	VolumeStep = 2
	// VolumeFloor keeps the level off the reserved max-loudness value.
	VolumeFloor = 2
	VolumeCeiling = 254
	// VolumeSilence is the level mute forces; levels at or above it
	// count as muted.
	VolumeSilence = 254
)

// Play-speed bounds. Speed-up wraps from the maximum back to normal
// speed; speed-down stops at zero.
const (
	SpeedMin uint16 = 1
	SpeedMax uint16 = 4
)

// CommandSource yields one command per poll plus the rotary encoder
// movement, which bypasses the command stream.
type CommandSource interface {
	Poll() input.Command
	EncoderDelta() int
}

// cursor tracks the outer playback loop: the current playlist index,
// whether the running track ended by user action (no auto-advance),
// and the loop length. num == length is the stop sentinel.
type cursor struct {
	num     int
	length  int
	skipped bool
}

// Player is the playback orchestrator.
type Player struct {
	codec hal.Codec
	vol   hal.Volume
	in    CommandSource
	disp  hal.Display

	// oldVol holds the pre-mute level; 0 means not muted.
	oldVol uint8

	idle func()
}

func New(codec hal.Codec, vol hal.Volume, in CommandSource, disp hal.Display) *Player {
	return &Player{
		codec: codec,
		vol:   vol,
		in:    in,
		disp:  disp,
		idle:  func() { time.Sleep(5 * time.Millisecond) },
	}
}

// PlayAll plays the whole playlist in order. A track that fails to
// start is skipped with a warning; the loop never aborts on a single
// bad track. Returns once the cursor passes the end or the user backs
// out.
func (p *Player) PlayAll(list *playlist.List) error {
	length := list.Len()
	if length == 0 {
		p.message("No tracks")
		return nil
	}

	cur := &cursor{length: length}
	for cur.num < length {
		cur.skipped = false

		pos, err := list.At(cur.num)
		if err != nil {
			return err
		}
		entry, err := p.vol.EntryAt(pos)
		if err != nil {
			slog.Warn("track unavailable, skipping", "index", cur.num, "error", err)
			cur.num++
			continue
		}

		p.showTrack(entry.Name)
		if err := p.codec.StartTrack(entry.Name, 0); err != nil {
			slog.Warn("track failed to start, skipping", "name", entry.Name, "error", err)
			cur.num++
			continue
		}

		p.live(cur)
		if !cur.skipped {
			cur.num++
		}
	}
	return nil
}

// PlayOne plays a single named file through the same live command
// loop. Restart and skip-back replay the track; skip-forward and back
// end playback.
func (p *Player) PlayOne(name string) error {
	cur := &cursor{length: 1}
	for cur.num == 0 {
		cur.skipped = false
		p.showTrack(name)
		if err := p.codec.StartTrack(name, 0); err != nil {
			return fmt.Errorf("starting %s: %w", name, err)
		}
		p.live(cur)
		if !cur.skipped {
			break
		}
	}
	return nil
}

// live runs while the codec reports the track still playing, reacting
// to commands. Stopping the track ends the loop; cursor mutations tell
// the outer loop what to do next.
func (p *Player) live(cur *cursor) {
	for p.codec.Playing() {
		if p.codec.State() == hal.PlayStatePlaying {
			p.renderElapsed()
		}

		if d := p.in.EncoderDelta(); d != 0 {
			p.stepVolume(d)
		}

		switch p.in.Poll() {
		case input.CmdRestart:
			cur.skipped = true
			p.codec.StopTrack()

		case input.CmdUp, input.CmdChannelUp:
			if cur.num == 0 {
				cur.num = cur.length - 1
			} else {
				cur.num--
			}
			cur.skipped = true
			p.codec.StopTrack()

		case input.CmdDown, input.CmdChannelDown:
			cur.num++
			cur.skipped = true
			p.codec.StopTrack()

		case input.CmdTogglePlay, input.CmdConfirm:
			if p.codec.State() == hal.PlayStatePaused {
				p.codec.Resume()
			} else {
				p.codec.Pause()
			}

		case input.CmdSpeedUp:
			v := p.codec.PlaySpeed()
			if v >= SpeedMax {
				v = SpeedMin
			} else {
				v++
			}
			p.codec.SetPlaySpeed(v)

		case input.CmdSpeedDown:
			if v := p.codec.PlaySpeed(); v > 0 {
				p.codec.SetPlaySpeed(v - 1)
			}

		case input.CmdVolumeUp:
			p.VolumeUp()

		case input.CmdVolumeDown:
			p.VolumeDown()

		case input.CmdMute:
			p.ToggleMute()

		case input.CmdBack:
			p.codec.StopTrack()
			cur.num = cur.length
			cur.skipped = true
		}

		p.idle()
	}
}

// VolumeUp steps the attenuation byte down (louder), floored above
// the reserved max-loudness value.
func (p *Player) VolumeUp() {
	l, _ := p.codec.Volume()
	if l <= VolumeFloor+VolumeStep {
		l = VolumeFloor
	} else {
		l -= VolumeStep
	}
	p.codec.SetVolume(l, l)
}

// VolumeDown steps the attenuation byte up (quieter), capped at the
// ceiling.
func (p *Player) VolumeDown() {
	l, _ := p.codec.Volume()
	if l >= VolumeCeiling-VolumeStep {
		l = VolumeCeiling
	} else {
		l += VolumeStep
	}
	p.codec.SetVolume(l, l)
}

// ToggleMute forces silence, remembering the prior level; unmuting
// restores it only if the shadow holds a genuine level, so a
// degenerate fully-silent shadow is never restored.
func (p *Player) ToggleMute() {
	l, _ := p.codec.Volume()
	if l < VolumeSilence {
		p.oldVol = l
		p.codec.SetVolume(VolumeSilence, VolumeSilence)
		return
	}
	if p.oldVol > 0 && p.oldVol < VolumeSilence {
		p.codec.SetVolume(p.oldVol, p.oldVol)
	}
	p.oldVol = 0
}

func (p *Player) stepVolume(delta int) {
	for ; delta > 0; delta-- {
		p.VolumeUp()
	}
	for ; delta < 0; delta++ {
		p.VolumeDown()
	}
}

func (p *Player) showTrack(name string) {
	p.disp.Clear()
	p.disp.SetCursor(0, 0)
	p.disp.Print(name)
}

func (p *Player) renderElapsed() {
	t := p.codec.DecodeTime()
	p.disp.SetCursor(0, 1)
	p.disp.Print(fmt.Sprintf("%02d:%02d", int(t.Minutes()), int(t.Seconds())%60))
}

func (p *Player) message(text string) {
	p.disp.Clear()
	p.disp.SetCursor(0, 0)
	p.disp.Print(text)
}
