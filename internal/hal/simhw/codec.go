package simhw

import (
	"time"

	"github.com/picodeck/picodeck/internal/hal"
)

// RegWrite records one register write for handshake assertions.
type RegWrite struct {
	Addr  uint8
	Value uint16
}

// Codec simulates the codec device: a register file, a playback state
// machine clocked by Playing() calls, and an encoder-side recording
// stream drained through the data registers.
type Codec struct {
	Regs   map[uint8]uint16
	Writes []RegWrite

	// ReadyLine mirrors the hardware ready signal; stays asserted
	// unless a test lowers it.
	ReadyLine bool

	// TrackPolls is how many Playing() calls a started track survives
	// before completing naturally.
	TrackPolls int
	FailTracks map[string]bool
	Started    []string

	playing   bool
	paused    bool
	pollsLeft int
	elapsed   time.Duration

	left, right uint8
	speed       uint16
	mono        bool
	diff        bool
	powered     bool
	sineOn      bool

	ResetCount int
	PatchErr   error
	Patches    []string

	// RecStream is the full word stream the encoder will produce.
	// StopLag is how many encoder-status reads pass between a stop
	// request and the stopped bit asserting. FinalByteInvalid raises
	// the padding bit on the final status word.
	RecStream        []uint16
	StopLag          int
	FinalByteInvalid bool
	recPos           int
}

func NewCodec() *Codec {
	return &Codec{
		Regs:       map[uint8]uint16{},
		ReadyLine:  true,
		TrackPolls: 3,
		FailTracks: map[string]bool{},
		powered:    true,
	}
}

func (c *Codec) ReadRegister(addr uint8) (uint16, error) {
	switch addr {
	case hal.RegHDAT1:
		return uint16(len(c.RecStream) - c.recPos), nil
	case hal.RegHDAT0:
		if c.recPos >= len(c.RecStream) {
			return 0, nil
		}
		w := c.RecStream[c.recPos]
		c.recPos++
		return w, nil
	case hal.RegAICtrl3:
		v := c.Regs[hal.RegAICtrl3]
		if v&hal.Ctrl3StopRequest != 0 && v&hal.Ctrl3Stopped == 0 {
			if c.StopLag > 0 {
				c.StopLag--
			} else {
				v |= hal.Ctrl3Stopped
			}
		}
		if v&hal.Ctrl3Stopped != 0 && c.FinalByteInvalid {
			v |= hal.Ctrl3InvalidLastByte
		}
		c.Regs[hal.RegAICtrl3] = v
		return v, nil
	default:
		return c.Regs[addr], nil
	}
}

func (c *Codec) WriteRegister(addr uint8, value uint16) error {
	c.Writes = append(c.Writes, RegWrite{Addr: addr, Value: value})
	if addr == hal.RegAICtrl3 {
		c.Regs[addr] |= value
		return nil
	}
	c.Regs[addr] = value
	return nil
}

func (c *Codec) Ready() bool {
	return c.ReadyLine
}

func (c *Codec) StartTrack(name string, offset int64) error {
	if c.FailTracks[name] {
		return hal.ErrDeviceInit
	}
	c.Started = append(c.Started, name)
	c.playing = true
	c.paused = false
	c.pollsLeft = c.TrackPolls
	c.elapsed = 0
	return nil
}

func (c *Codec) StopTrack() {
	c.playing = false
	c.paused = false
}

// Playing clocks the simulated track: each call while unpaused burns
// one poll until the track completes naturally.
func (c *Codec) Playing() bool {
	if !c.playing {
		return false
	}
	if c.paused {
		return true
	}
	if c.pollsLeft <= 0 {
		c.playing = false
		return false
	}
	c.pollsLeft--
	c.elapsed += time.Second
	return true
}

func (c *Codec) State() hal.PlayState {
	switch {
	case !c.playing:
		return hal.PlayStateStopped
	case c.paused:
		return hal.PlayStatePaused
	default:
		return hal.PlayStatePlaying
	}
}

func (c *Codec) Pause()  { c.paused = true }
func (c *Codec) Resume() { c.paused = false }

func (c *Codec) Volume() (uint8, uint8)    { return c.left, c.right }
func (c *Codec) SetVolume(l, r uint8)      { c.left, c.right = l, r }
func (c *Codec) PlaySpeed() uint16         { return c.speed }
func (c *Codec) SetPlaySpeed(speed uint16) { c.speed = speed }
func (c *Codec) DecodeTime() time.Duration { return c.elapsed }

func (c *Codec) MonoMode() bool          { return c.mono }
func (c *Codec) SetMonoMode(on bool)     { c.mono = on }
func (c *Codec) Differential() bool      { return c.diff }
func (c *Codec) SetDifferential(on bool) { c.diff = on }

func (c *Codec) Reset() error {
	c.ResetCount++
	c.playing = false
	c.paused = false
	return nil
}

func (c *Codec) PowerOn()  { c.powered = true }
func (c *Codec) PowerOff() { c.powered = false }

func (c *Codec) Powered() bool { return c.powered }

func (c *Codec) SineTest(on bool) { c.sineOn = on }
func (c *Codec) SineOn() bool     { return c.sineOn }

func (c *Codec) MemoryTest() uint16 { return 0x83FF }

func (c *Codec) LoadPatch(name string) error {
	if c.PatchErr != nil {
		return c.PatchErr
	}
	c.Patches = append(c.Patches, name)
	return nil
}
