package cmd

import (
	"os"
	"time"

	"github.com/josephlewis42/shesh/core/ttylog"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore recorded sessions.",
}

// playCommand replays a recording in real time
var playCommand = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded interactive session in the terminal.",
	Long:  `Plays a session recorded with --record back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand prints a recording without pauses
var catCommand = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print full output of a recorded session to a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
