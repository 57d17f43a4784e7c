package cmd

import (
	"log"
	"os"

	"github.com/josephlewis42/shesh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var cfgPath string

func configPaths() config.Paths {
	paths := config.GetPaths(os.Getenv)
	if cfgPath != "" {
		paths.Config = cfgPath
	}
	return paths
}

// loadConfig reads the configuration, writing the defaults on first use.
func loadConfig(logger *log.Logger) (*config.Configuration, error) {
	fs := afero.NewOsFs()
	paths := configPaths()

	exists, err := afero.Exists(fs, paths.ShellConfigPath())
	if err != nil {
		return nil, err
	}
	if !exists {
		return config.Initialize(fs, paths, logger)
	}

	return config.Load(fs, paths)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shesh",
	Short: "A small interactive shell",
	Long: `An interactive command shell with history hints, tab completion,
aliases, redirects, pipelines and background jobs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runShell(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory (default $XDG_CONFIG_HOME/shesh)")
}
