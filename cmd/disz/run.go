package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmsk2/zdisasm/internal/engine"
	"github.com/rmsk2/zdisasm/internal/render"
)

var (
	flagStat bool
	flagOrg  int
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Disassemble an annotated hex file and print the assembler listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagStat, "stat", false, "emit format/mnemonic frequency statistics")
	runCmd.Flags().IntVar(&flagOrg, "org", 0, "initial location counter")
}

func runRun(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	eng := engine.New(flagOrg)
	if err := eng.Run(string(raw)); err != nil {
		return fmt.Errorf("disassembling %s: %w", args[0], err)
	}

	lines := eng.RenderAll()
	renderer := render.AsmRenderer{}
	if err := renderer.Render(cmd.OutOrStdout(), lines); err != nil {
		return err
	}

	if flagStat {
		byFormat, byMnemonic := eng.Stats()
		fmt.Fprintln(cmd.OutOrStdout(), "\n* --- format frequency ---")
		for _, s := range byFormat {
			fmt.Fprintf(cmd.OutOrStdout(), "* %-6s %d\n", s.Format, s.Count)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "* --- mnemonic frequency by format ---")
		for _, s := range byMnemonic {
			fmt.Fprintf(cmd.OutOrStdout(), "* %-6s %-8s %d\n", s.Format, s.Mnemonic, s.Count)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "TODO markers: %d\n", eng.TodoCount())
	return nil
}
