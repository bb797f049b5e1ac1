package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		showVersion(cmd)
	},
}

// showVersion mirrors the teacher's showVersion: pull vcs.revision and
// vcs.time out of the build info rather than hand-stamping them at build
// time.
func showVersion(cmd *cobra.Command) {
	var hash, vcsTime string
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				hash = setting.Value
			case "vcs.time":
				vcsTime = setting.Value
			}
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "disz - z/Architecture annotated disassembler")
	fmt.Fprintf(out, "Commit: %s, from: %s\n", hash, vcsTime)
}
