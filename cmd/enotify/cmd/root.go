package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/enotify/enotify/internal/config"
	"github.com/enotify/enotify/internal/logging"
	"github.com/enotify/enotify/internal/notifier"
	"github.com/enotify/enotify/internal/procwatch"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	log   *logging.Logger
	store *config.Store
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "enotify",
	Short: "E-mail notifier for process termination",
	Long: `enotify watches a process by pid and sends an e-mail, with optional
attachments, once the process has terminated. The watch runs as a detached
background task so the invoking shell returns immediately.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.enotify/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from ENOTIFY_LOG_LEVEL or info)")
}

// initConfig builds the logger and loads the persisted configuration
func initConfig() {
	level := os.Getenv("ENOTIFY_LOG_LEVEL")
	if logLevel != "" {
		level = logLevel
	}
	log = logging.NewLogger(logging.ParseLevel(level), false)

	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error locating config file: %v\n", err)
			os.Exit(1)
		}
	}

	var err error
	store, err = config.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config file %s: %v\n", path, err)
		os.Exit(1)
	}
}

// ExitCode maps lifecycle errors onto exit codes for scripting: 1 when the
// target process does not exist, 2 when authentication gave up.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, procwatch.ErrProcessNotFound):
		return 1
	case errors.Is(err, notifier.ErrAuthExhausted), errors.Is(err, notifier.ErrAuthFatal):
		return 2
	}
	return 1
}
