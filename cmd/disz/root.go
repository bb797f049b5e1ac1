// Package main is the disz CLI: a cobra root command with run and version
// subcommands, grounded on arnavsurve-grace's cobra root.go (rootCmd +
// subcommand files under cmd/) for structure, and on the teacher's
// flag-based main/showVersion for the version banner's content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "disz",
	Short: "disz disassembles annotated z/Architecture hex into assembler source",
	Long: "disz is an iterative disassembler for z/Architecture binary code. It consumes " +
		"a stream of hexadecimal bytes plus inline annotations that steer interpretation, " +
		"and emits a human-readable assembler listing suitable for reassembly.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	Execute()
}
