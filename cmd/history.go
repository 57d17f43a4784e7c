package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the saved command history.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(log.New(cmd.ErrOrStderr(), "", 0))
		if err != nil {
			return err
		}

		lines, err := cfg.HistoryStore().Load()
		if err != nil {
			return err
		}

		for i, line := range lines {
			fmt.Fprintf(cmd.OutOrStdout(), "% 5d  %s\n", i+1, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
