package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/script"
	"github.com/dictools/rcmod/internal/workbook"
)

// NewReformatCommand creates the reformat command: turn a reviewed
// descriptor back into the normalization script that replays it.
func NewReformatCommand(opts *RootOptions) *cobra.Command {
	var (
		mapFile        string
		outFile        string
		outputSheet    string
		elideUnlabeled bool
	)

	cmd := &cobra.Command{
		Use:   "reformat <dictionary>",
		Short: "Generate a normalization script from a mapping descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return runReformat(args[0], mapFile, outFile, outputSheet, elideUnlabeled, formatter)
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "mapping descriptor JSON or YAML (required)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "script output path (required)")
	cmd.Flags().StringVar(&outputSheet, "output-sheet", script.DefaultOutputSheet, "consolidated sheet name")
	cmd.Flags().BoolVar(&elideUnlabeled, "elide-unlabeled", false,
		"also drop rows whose Field Label is blank")
	cmd.MarkFlagRequired("map")
	cmd.MarkFlagRequired("out")

	return cmd
}

type scriptResult struct {
	Script   string `json:"script"`
	Commands int    `json:"commands"`
}

func (r scriptResult) String() string {
	return fmt.Sprintf("Wrote %d command(s) to %s", r.Commands, r.Script)
}

func runReformat(dictPath, mapFile, outFile, outputSheet string, elideUnlabeled bool, formatter *OutputFormatter) error {
	desc, err := mapping.Load(mapFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load descriptor", err)
	}
	src, err := workbook.Open(dictPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open dictionary", err)
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	lines, err := script.Generate(src, desc, script.GenerateOptions{
		OutputSheet:    outputSheet,
		ElideUnlabeled: elideUnlabeled,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "generate script", err)
	}
	if err := writeLines(outFile, lines); err != nil {
		return WrapExitError(ExitCommandError, "write script", err)
	}
	return formatter.Success(scriptResult{Script: outFile, Commands: countCommands(lines)})
}

// countCommands ignores blanks and comments.
func countCommands(lines []string) int {
	n := 0
	for _, l := range lines {
		if l != "" && l[0] != '#' {
			n++
		}
	}
	return n
}
