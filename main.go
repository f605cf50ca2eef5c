package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photoframe/internal/startup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		startup.LogFatal("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	serve := serveCmd(&cfgFile)

	rootCmd := &cobra.Command{
		Use:   "photoframe",
		Short: "Digital photo frame server",
		Long: `PhotoFrame indexes a photo library, picks the next photo to show and
pairs it with a short poem or quotation written for that photo.

Running without a subcommand is the same as "photoframe serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./photoframe.yaml or $HOME/photoframe.yaml)")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(scanCmd(&cfgFile))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "photoframe %s (commit: %s, built: %s, %s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion)
		},
	}
}
