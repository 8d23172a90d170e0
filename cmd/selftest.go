package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sineSeconds int

var selftestCmd = &cobra.Command{
	Use:       "selftest {sine|memory}",
	Short:     "Run a codec self-test",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"sine", "memory"},
	RunE: func(cmd *cobra.Command, args []string) error {
		hw, err := buildHardware()
		if err != nil {
			return err
		}
		defer hw.close()

		switch args[0] {
		case "sine":
			hw.codec.SineTest(true)
			time.Sleep(time.Duration(sineSeconds) * time.Second)
			hw.codec.SineTest(false)
		case "memory":
			fmt.Printf("memory test result: %04X\n", hw.codec.MemoryTest())
		default:
			return fmt.Errorf("unknown self-test %q", args[0])
		}
		return nil
	},
}

func init() {
	selftestCmd.Flags().IntVar(&sineSeconds, "seconds", 2, "sine test duration")
}
