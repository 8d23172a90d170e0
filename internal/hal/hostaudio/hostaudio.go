// Package hostaudio implements the codec capability on top of the
// host's speakers via beep. Playback is real; the recording-side
// register protocol is simulated (the encoder produces no words, so a
// recording drains straight to an empty file) since the host has no
// on-chip encoder to arm.
package hostaudio

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/spf13/afero"

	"github.com/picodeck/picodeck/internal/hal"
)

const outputRate = beep.SampleRate(44100)

// Codec plays files from a directory through the host speakers.
type Codec struct {
	fs  afero.Fs
	dir string

	mu       sync.Mutex
	inited   bool
	playing  bool
	paused   bool
	streamer beep.StreamSeekCloser
	format   beep.Format
	resample *beep.Resampler
	volume   *effects.Volume
	ctrl     *beep.Ctrl

	regs        map[uint8]uint16
	left, right uint8
	speed       uint16
	mono        bool
	diff        bool
	powered     bool
	sinePhase   float64
	sineOn      bool
}

func New(fs afero.Fs, dir string) *Codec {
	return &Codec{
		fs:      fs,
		dir:     dir,
		regs:    map[uint8]uint16{},
		speed:   1,
		powered: true,
	}
}

func (c *Codec) initSpeaker() error {
	if c.inited {
		return nil
	}
	if err := speaker.Init(outputRate, outputRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("%w: %v", hal.ErrDeviceInit, err)
	}
	c.inited = true
	return nil
}

func (c *Codec) StartTrack(name string, offset int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if err := c.initSpeaker(); err != nil {
		return err
	}

	f, err := c.fs.Open(filepath.Join(c.dir, name))
	if err != nil {
		return fmt.Errorf("%s: %w", name, hal.ErrCannotOpenFile)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("%s: %w", name, hal.ErrDeviceInit)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decoding %s: %w", name, hal.ErrDeviceInit)
	}
	if offset > 0 {
		if err := streamer.Seek(int(offset)); err != nil {
			streamer.Close()
			return fmt.Errorf("seeking %s: %w", name, hal.ErrDeviceInit)
		}
	}

	c.streamer = streamer
	c.format = format
	c.resample = beep.Resample(4, format.SampleRate, outputRate, streamer)
	c.resample.SetRatio(c.ratioLocked())
	c.volume = &effects.Volume{Streamer: c.resample, Base: 2}
	c.applyVolumeLocked()
	c.ctrl = &beep.Ctrl{Streamer: c.volume}
	c.playing = true
	c.paused = false

	speaker.Play(beep.Seq(c.ctrl, beep.Callback(func() {
		c.mu.Lock()
		c.playing = false
		c.mu.Unlock()
	})))
	return nil
}

func (c *Codec) StopTrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Codec) stopLocked() {
	if !c.playing && c.streamer == nil {
		return
	}
	if c.inited {
		speaker.Clear()
	}
	if c.streamer != nil {
		c.streamer.Close()
		c.streamer = nil
	}
	c.playing = false
	c.paused = false
}

func (c *Codec) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Codec) State() hal.PlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.playing:
		return hal.PlayStateStopped
	case c.paused:
		return hal.PlayStatePaused
	default:
		return hal.PlayStatePlaying
	}
}

func (c *Codec) Pause()  { c.setPaused(true) }
func (c *Codec) Resume() { c.setPaused(false) }

func (c *Codec) setPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctrl == nil {
		return
	}
	speaker.Lock()
	c.ctrl.Paused = paused
	speaker.Unlock()
	c.paused = paused
}

func (c *Codec) Volume() (uint8, uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right
}

func (c *Codec) SetVolume(left, right uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left, c.right = left, right
	c.applyVolumeLocked()
}

// applyVolumeLocked maps the attenuation byte (0.5 dB per step, larger
// is quieter) onto the effects gain, which is expressed in octaves.
func (c *Codec) applyVolumeLocked() {
	if c.volume == nil {
		return
	}
	db := -float64(c.left) / 2
	if c.inited {
		speaker.Lock()
		defer speaker.Unlock()
	}
	c.volume.Volume = db / 6.02
	c.volume.Silent = c.left >= 254
}

func (c *Codec) PlaySpeed() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *Codec) SetPlaySpeed(speed uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	if c.resample == nil {
		return
	}
	if c.inited {
		speaker.Lock()
		defer speaker.Unlock()
	}
	c.resample.SetRatio(c.ratioLocked())
}

func (c *Codec) ratioLocked() float64 {
	mult := float64(c.speed)
	if mult < 1 {
		mult = 1
	}
	return float64(c.format.SampleRate) / float64(outputRate) * mult
}

func (c *Codec) DecodeTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := c.streamer.Position()
	speaker.Unlock()
	return c.format.SampleRate.D(pos)
}

func (c *Codec) MonoMode() bool          { return c.mono }
func (c *Codec) SetMonoMode(on bool)     { c.mono = on }
func (c *Codec) Differential() bool      { return c.diff }
func (c *Codec) SetDifferential(on bool) { c.diff = on }

func (c *Codec) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.regs = map[uint8]uint16{}
	c.speed = 1
	return nil
}

func (c *Codec) PowerOn()  { c.powered = true }
func (c *Codec) PowerOff() {
	c.StopTrack()
	c.powered = false
}

// SineTest plays a generated 1 kHz tone until disabled.
func (c *Codec) SineTest(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !on {
		if c.sineOn && c.inited {
			speaker.Clear()
		}
		c.sineOn = false
		return
	}
	if err := c.initSpeaker(); err != nil {
		return
	}
	c.stopLocked()
	c.sinePhase = 0
	c.sineOn = true
	step := 1000.0 / float64(outputRate)
	speaker.Play(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.3 * math.Sin(2*math.Pi*c.sinePhase)
			samples[i][0], samples[i][1] = v, v
			c.sinePhase += step
		}
		return len(samples), true
	}))
}

func (c *Codec) MemoryTest() uint16 { return 0x83FF }

// LoadPatch verifies the overlay file exists; the host backend has no
// codec RAM to load it into.
func (c *Codec) LoadPatch(name string) error {
	ok, err := afero.Exists(c.fs, filepath.Join(c.dir, name))
	if err != nil || !ok {
		return fmt.Errorf("%s: %w", name, hal.ErrMissingPatch)
	}
	return nil
}

func (c *Codec) Ready() bool { return true }

func (c *Codec) ReadRegister(addr uint8) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch addr {
	case hal.RegHDAT1:
		// No encoder on the host: nothing ever waits.
		return 0, nil
	case hal.RegAICtrl3:
		v := c.regs[hal.RegAICtrl3]
		if v&hal.Ctrl3StopRequest != 0 {
			v |= hal.Ctrl3Stopped
			c.regs[hal.RegAICtrl3] = v
		}
		return v, nil
	default:
		return c.regs[addr], nil
	}
}

func (c *Codec) WriteRegister(addr uint8, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr == hal.RegAICtrl3 {
		c.regs[addr] |= value
		return nil
	}
	c.regs[addr] = value
	return nil
}
