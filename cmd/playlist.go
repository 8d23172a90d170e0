package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/picodeck/picodeck/internal/playlist"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Scan the volume and list the recognized tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hw, err := buildHardware()
		if err != nil {
			return err
		}
		defer hw.close()

		list := playlist.NewList(cfg.Media.MaxTracks)
		builder := playlist.NewBuilder(hw.vol, cfg.Media.Extensions)
		if err := builder.Rebuild(list); err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Track", "Position"})
		for i := 0; i < list.Len(); i++ {
			pos, err := list.At(i)
			if err != nil {
				return err
			}
			entry, err := hw.vol.EntryAt(pos)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{i + 1, entry.Name, entry.Position})
		}
		t.Render()
		return nil
	},
}
