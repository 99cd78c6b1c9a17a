package cli

import (
	"github.com/spf13/cobra"

	"github.com/dictools/rcmod/internal/script"
)

// NewCompileCommand creates the compile command: turn a classifier fact
// report into the row-fix script that applies its corrections.
func NewCompileCommand(opts *RootOptions) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "compile <report.json>",
		Short: "Compile classifier facts into a corrective script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return runCompile(args[0], outFile, formatter)
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "script output path (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runCompile(reportPath, outFile string, formatter *OutputFormatter) error {
	facts, err := script.LoadFacts(reportPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load report", err)
	}
	lines, err := script.Compile(facts)
	if err != nil {
		return WrapExitError(ExitFailure, "compile facts", err)
	}
	if err := writeLines(outFile, lines); err != nil {
		return WrapExitError(ExitCommandError, "write script", err)
	}
	return formatter.Success(scriptResult{Script: outFile, Commands: countCommands(lines)})
}
