package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"arcx/internal/config"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arcx",
	Short: "arcx 📦 - pack game asset trees into compressed archives",
	Long: "arcx 📦 compresses a game asset directory into a single container, " +
		"picking a compression level per asset type, and restores it byte for byte.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := zerolog.InfoLevel
		if verbose || cfg.Verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default arcx.yaml in . or ~/.config/arcx)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// engineLogger quiets per-run info lines while the progress display owns the
// terminal.
func engineLogger(noProgress bool) *zerolog.Logger {
	l := logger
	if !noProgress {
		l = logger.Level(zerolog.WarnLevel)
	}
	return &l
}

func displayPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
