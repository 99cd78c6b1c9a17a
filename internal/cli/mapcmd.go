package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/workbook"
)

// NewMapCommand creates the map command: resolve a dictionary's headers
// and write the per-sheet mapping descriptor.
func NewMapCommand(opts *RootOptions) *cobra.Command {
	var (
		mapFile  string
		outFile  string
		defaults []string
	)

	cmd := &cobra.Command{
		Use:   "map <dictionary>",
		Short: "Resolve headers and generate a mapping descriptor",
		Long: "Detects each sheet's header row, resolves raw columns onto the canonical\n" +
			"schema, and writes a descriptor for review and reuse.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return runMap(args[0], mapFile, outFile, defaults, formatter)
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "user override mapping JSON (raw column → canonical)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "descriptor output path (required)")
	cmd.Flags().StringArrayVar(&defaults, "default-immediate", nil,
		"immediate default for an unmapped canonical column, as CANONICAL=VALUE (repeatable)")
	cmd.MarkFlagRequired("out")

	return cmd
}

// mapResult is the JSON payload for map's --format json output.
type mapResult struct {
	Descriptor string            `json:"descriptor"`
	Sheets     []mapping.Summary `json:"sheets"`
}

func (r mapResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Descriptor written to %s\n", r.Descriptor)
	for _, s := range r.Sheets {
		name := s.Sheet
		if name == "" {
			name = "(csv)"
		}
		fmt.Fprintf(&b, "\nSheet %s\n", name)
		if len(s.MissingRequired) > 0 {
			fmt.Fprintf(&b, "  missing required : %s\n", strings.Join(s.MissingRequired, ", "))
		}
		if len(s.UnmappedRaw) > 0 {
			fmt.Fprintf(&b, "  unmapped columns : %s\n", strings.Join(s.UnmappedRaw, ", "))
		}
		if len(s.UnusedCanonical) > 0 {
			fmt.Fprintf(&b, "  unused canonical : %s\n", strings.Join(s.UnusedCanonical, ", "))
		}
		if len(s.MissingRequired) == 0 && len(s.UnmappedRaw) == 0 {
			fmt.Fprintf(&b, "  fully mapped\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func runMap(dictPath, mapFile, outFile string, defaultPairs []string, formatter *OutputFormatter) error {
	overrides, err := LoadOverrides(mapFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load overrides", err)
	}
	defaults, err := ParseDefaults(defaultPairs)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse defaults", err)
	}

	src, err := workbook.Open(dictPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open dictionary", err)
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	desc, summaries, err := mapping.Generate(src, overrides.Columns, defaults)
	if err != nil {
		return WrapExitError(ExitFailure, "resolve headers", err)
	}
	if err := mapping.Save(outFile, desc); err != nil {
		return WrapExitError(ExitCommandError, "write descriptor", err)
	}

	return formatter.Success(mapResult{Descriptor: outFile, Sheets: summaries})
}
