package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd assembles the podtags command tree. Configuration is loaded once,
// before any subcommand runs.
func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "podtags",
		Short: "Render a content pod through its templates",
		Long: `podtags renders every document of a content pod through html/template views
that read the pod with template tags, records which pod files each document
used, and answers questions about those dependencies.

Configuration is read from podtags.json (created with defaults when missing),
then PODTAGS_* environment variables, then flags.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.Flags())
		},
	}
	addSiteFlags(cmd.PersistentFlags(), &a.configPath)

	cmd.AddCommand(newBuildCmd(a), newDepsCmd(a), newNavCmd(a))
	return cmd
}

func addSiteFlags(flags *pflag.FlagSet, configPath *string) {
	flags.StringVar(configPath, "config", "./podtags.json", "config file")
	flags.String("pod", "", "pod root directory")
	flags.String("templates", "", "template directory")
	flags.String("out", "", "output directory")
	flags.String("db", "", "dependency database path")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
}
