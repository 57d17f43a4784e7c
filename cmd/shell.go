package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/josephlewis42/shesh/core"
	"github.com/josephlewis42/shesh/core/config"
	"github.com/josephlewis42/shesh/core/editor"
	"github.com/josephlewis42/shesh/core/logger"
	"github.com/josephlewis42/shesh/core/ttylog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	command    string
	recordPath string
	noStartup  bool
	printLogs  bool
)

func openAppLog(cfg *config.Configuration, cliLog *log.Logger, stderr io.Writer) (zerolog.Logger, func()) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.SessionID = logger.NewSessionID()

	if printLogs {
		logCfg.Output = stderr
		logCfg.Pretty = true
		return logger.New(logCfg), func() {}
	}

	fd, err := cfg.OpenAppLog()
	if err != nil {
		cliLog.Printf("Couldn't open log %s: %v", cfg.AppLogPath(), err)
		return zerolog.Nop(), func() {}
	}

	logCfg.Output = fd
	return logger.New(logCfg), func() { fd.Close() }
}

func runShell(cmd *cobra.Command) error {
	cliLog := log.New(cmd.ErrOrStderr(), "shesh: ", 0)

	cfg, err := loadConfig(cliLog)
	if err != nil {
		return err
	}

	appLog, closeLog := openAppLog(cfg, cliLog, cmd.ErrOrStderr())
	defer closeLog()

	var (
		stdin  io.Reader = os.Stdin
		stdout           = cmd.OutOrStdout()
		stderr           = cmd.ErrOrStderr()
		fd               = int(os.Stdin.Fd())
	)
	interactive := command == "" && term.IsTerminal(fd) && os.Getenv("TERM") != "dumb"

	if recordPath != "" {
		recording, err := os.Create(recordPath)
		if err != nil {
			return err
		}
		defer recording.Close()

		width, height, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width, height = ttylog.DefaultWidth, ttylog.DefaultHeight
		}

		shellPath, _ := os.Executable()
		sink := ttylog.NewAsciicastLogSink(recording, width, height, shellPath)
		recorder := ttylog.NewRecorder(stdin, stdout, stderr, sink, appLog)
		stdin, stdout, stderr = recorder.Stdin(), recorder.Stdout(), recorder.Stderr()
	}

	// Children read the terminal directly, only the line editor's input is
	// recorded.
	sh, err := core.NewShell(os.Stdin, stdout, stderr, appLog)
	if err != nil {
		return err
	}
	sh.Prompt = cfg.Prompt
	sh.HistoryStore = cfg.HistoryStore()
	sh.SetColor(cfg.ColorEnabled(!color.NoColor))
	if err := sh.LoadHistory(); err != nil {
		appLog.Warn().Err(err).Str("path", cfg.HistoryPath()).Msg("couldn't load history")
	}

	// Survive Ctrl-C while a foreground child runs, children get the default
	// disposition back when they exec.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			appLog.Debug().Msg("interrupt")
		}
	}()

	ctx := context.Background()
	appLog.Info().Bool("interactive", interactive).Str("dir", sh.Dir()).Msg("session started")
	defer func() {
		appLog.Info().Msg("session ended")
	}()

	if !noStartup {
		sh.RunStartup(ctx, cfg.Startup)
	}

	if command != "" {
		if err := sh.RunLine(ctx, command); err != nil {
			// The shell already reported it.
			cmd.SilenceErrors = true
			return err
		}
		return nil
	}

	var reader core.LineReader
	if interactive {
		renderer := editor.NewRenderer(cfg.ColorEnabled(!color.NoColor))
		renderer.MaxCompletions = cfg.MaxCompletions
		reader = editor.New(fd, stdin, stdout, renderer, sh.Complete)
	} else {
		plain, err := core.NewPlainReader(stdin, stdout, stderr)
		if err != nil {
			return err
		}
		defer plain.Close()
		reader = plain
	}

	return sh.Run(ctx, reader)
}

func init() {
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run a single line and exit")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
	rootCmd.Flags().BoolVar(&noStartup, "no-startup", false, "skip the startup commands")
	rootCmd.Flags().BoolVar(&printLogs, "print-logs", false, "print the app log to stderr instead of the log file")
}
