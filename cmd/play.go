package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/picodeck/picodeck/internal/player"
	"github.com/picodeck/picodeck/internal/playlist"
)

var playCmd = &cobra.Command{
	Use:   "play [name|number]",
	Short: "Play the playlist, a named file, or a numbered track",
	Long: `With no argument, play every recognized track on the volume in scan
order. A bare number N plays trackNNN.mp3 (or trackNNN.ogg if no mp3
exists); anything else is treated as a filename.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hw, err := buildHardware()
		if err != nil {
			return err
		}
		defer hw.close()

		pl := player.New(hw.codec, hw.vol, hw.in, hw.disp)
		v := uint8(cfg.Codec.Volume)
		hw.codec.SetVolume(v, v)

		if len(args) == 0 {
			list := playlist.NewList(cfg.Media.MaxTracks)
			builder := playlist.NewBuilder(hw.vol, cfg.Media.Extensions)
			if err := builder.Rebuild(list); err != nil {
				return err
			}
			return pl.PlayAll(list)
		}

		name := args[0]
		if n, err := strconv.Atoi(name); err == nil {
			if n < 1 || n > 999 {
				return fmt.Errorf("track number must be in 1..999, got %d", n)
			}
			name, err = resolveTrack(hw, n)
			if err != nil {
				return err
			}
		}
		return pl.PlayOne(name)
	},
}

func resolveTrack(hw *hardware, n int) (string, error) {
	for _, ext := range []string{"mp3", "ogg"} {
		name := fmt.Sprintf("track%03d.%s", n, ext)
		ok, err := hw.vol.Exists(name)
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("no track%03d.mp3 or .ogg on the volume", n)
}
