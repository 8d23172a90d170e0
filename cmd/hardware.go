package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/picodeck/picodeck/internal/hal"
	"github.com/picodeck/picodeck/internal/hal/dirvol"
	"github.com/picodeck/picodeck/internal/hal/hostaudio"
	"github.com/picodeck/picodeck/internal/hal/keyremote"
	"github.com/picodeck/picodeck/internal/hal/simhw"
	"github.com/picodeck/picodeck/internal/hal/termdisp"
	"github.com/picodeck/picodeck/internal/input"
)

// hardware bundles the drivers a command needs, plus their teardown.
type hardware struct {
	codec hal.Codec
	vol   hal.Volume
	disp  hal.Display
	in    *input.Dispatcher

	close func()
}

// buildHardware assembles drivers from the configuration: the media
// directory as the storage volume, the configured codec backend, the
// terminal as display, and the keyboard as remote decoder when stdin
// is a TTY.
func buildHardware() (*hardware, error) {
	if err := os.MkdirAll(cfg.Media.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	vol := dirvol.NewDir(cfg.Media.Directory)

	var codec hal.Codec
	switch cfg.Codec.Backend {
	case "host":
		codec = hostaudio.New(afero.NewOsFs(), cfg.Media.Directory)
	default:
		codec = simhw.NewCodec()
	}

	dispCfg, err := cfg.DispatcherConfig()
	if err != nil {
		return nil, err
	}

	var (
		remote  hal.RemoteDecoder
		cleanup = func() {}
	)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		kr, err := keyremote.Open()
		if err != nil {
			return nil, fmt.Errorf("opening keyboard remote: %w", err)
		}
		remote = kr
		cleanup = kr.Close
	} else {
		slog.Debug("stdin is not a terminal, running without remote input")
	}

	return &hardware{
		codec: codec,
		vol:   vol,
		disp:  termdisp.New(cfg.Display.Cols, cfg.Display.Rows),
		in:    input.New(nil, remote, nil, dispCfg),
		close: cleanup,
	}, nil
}
