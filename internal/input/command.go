// Package input normalizes the controller's heterogeneous input
// sources (digital switches, infrared remote) into one command stream.
package input

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one normalized input event. Commands are produced fresh
// on every poll and never persisted.
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdLeft
	CmdRight
	CmdConfirm
	CmdBack
	CmdTogglePlay
	CmdRestart
	CmdMute
	CmdSpeedUp
	CmdSpeedDown
	CmdVolumeUp
	CmdVolumeDown
	CmdChannelUp
	CmdChannelDown
	CmdDigit0
	CmdDigit1
	CmdDigit2
	CmdDigit3
	CmdDigit4
	CmdDigit5
	CmdDigit6
	CmdDigit7
	CmdDigit8
	CmdDigit9
)

var commandNames = map[Command]string{
	CmdNone:        "none",
	CmdUp:          "navigate-up",
	CmdDown:        "navigate-down",
	CmdLeft:        "navigate-left",
	CmdRight:       "navigate-right",
	CmdConfirm:     "confirm",
	CmdBack:        "back",
	CmdTogglePlay:  "toggle-play",
	CmdRestart:     "restart",
	CmdMute:        "mute",
	CmdSpeedUp:     "speed-up",
	CmdSpeedDown:   "speed-down",
	CmdVolumeUp:    "volume-up",
	CmdVolumeDown:  "volume-down",
	CmdChannelUp:   "channel-up",
	CmdChannelDown: "channel-down",
}

func (c Command) String() string {
	if d, ok := c.Digit(); ok {
		return "select-" + strconv.Itoa(d)
	}
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Digit reports the index carried by a select-index command.
func (c Command) Digit() (int, bool) {
	if c >= CmdDigit0 && c <= CmdDigit9 {
		return int(c - CmdDigit0), true
	}
	return 0, false
}

// Digit returns the select-index command for a digit 0..9.
func Digit(d int) Command {
	return CmdDigit0 + Command(d%10)
}

// Parse maps a configuration name ("confirm", "navigate-down",
// "select-3", ...) to its Command.
func Parse(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "select-"); ok {
		d, err := strconv.Atoi(rest)
		if err != nil || d < 0 || d > 9 {
			return CmdNone, fmt.Errorf("invalid select index %q", rest)
		}
		return Digit(d), nil
	}
	for cmd, name := range commandNames {
		if name == s {
			return cmd, nil
		}
	}
	return CmdNone, fmt.Errorf("unknown command %q", s)
}
