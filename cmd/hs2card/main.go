package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/photo2card/hs2card/pkg/logging"
)

const version = "0.1.0"

var (
	logLevel    string
	colorMode   string
	versionFlag bool
	rootCmd     *cobra.Command
)

var logger hclog.Logger = hclog.NewNullLogger()

var closeLog = func() error { return nil }

func getBuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion() {
	fmt.Printf("hs2card %s\n", version)
	fmt.Printf("Built: %s\n", getBuildTimestamp())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hs2card",
		Short:         "Read and edit HS2 character cards",
		Long:          `Inspect, validate and edit the face sliders of HS2 character card PNG files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out, closer := logging.OpenLogOutput()
			closeLog = closer
			logger = logging.NewLogger("hs2card", logging.GetLogLevel(logLevel), out)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log output: %v\n", err)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				printVersion()
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output (auto, always, never)")
	cmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	cmd.AddCommand(
		newInspectCmd(),
		newValidateCmd(),
		newBlocksCmd(),
		newFaceCmd(),
		newExtensionsCmd(),
	)
	return cmd
}

func init() {
	rootCmd = newRootCmd()
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
