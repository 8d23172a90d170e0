package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/picodeck/picodeck/internal/service"
)

var recordCmd = &cobra.Command{
	Use:   "record [NN]",
	Short: "Record from the configured input to the volume",
	Long: `Start a recording session; any key stops it. The file is named
recordNN.ogg with NN auto-incremented, unless two digits are given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 || n > 99 || len(args[0]) != 2 {
				return fmt.Errorf("record name must be two digits 00..99, got %q", args[0])
			}
			name = fmt.Sprintf("record%s.ogg", args[0])
		}

		hw, err := buildHardware()
		if err != nil {
			return err
		}
		defer hw.close()

		slog.Info("recording; press any key to stop")
		svc := service.New(cfg, hw.codec, hw.vol, hw.in, hw.disp)
		return svc.Record(name)
	},
}
