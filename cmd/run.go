package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/picodeck/picodeck/internal/service"
)

var watchMedia bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive control loop",
	Long: `Run the menu-driven controller until interrupted. Input comes from the
configured switches and the keyboard (acting as the remote); the
display is rendered on the terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hw, err := buildHardware()
		if err != nil {
			return err
		}
		defer hw.close()

		svc := service.New(cfg, hw.codec, hw.vol, hw.in, hw.disp)
		if watchMedia {
			if err := svc.WatchMedia(cfg.Media.Directory); err != nil {
				slog.Warn("media watching disabled", "error", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		slog.Info("controller stopped")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&watchMedia, "watch", true, "rescan the playlist when the media directory changes")
}
