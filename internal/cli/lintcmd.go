package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dictools/rcmod/internal/lint"
	"github.com/dictools/rcmod/internal/resolve"
	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/workbook"
)

// NewLintCommand creates the lint command: resolve a single-sheet
// dictionary's headers and classify every row.
func NewLintCommand(opts *RootOptions) *cobra.Command {
	var (
		mapFile    string
		reportFile string
		formName   string
		exportMap  string
	)

	cmd := &cobra.Command{
		Use:   "lint <dictionary>",
		Short: "Classify dictionary rows against the canonical schema rules",
		Long: "Resolves the dictionary's columns, then flags rows with malformed or\n" +
			"duplicate identifiers, unknown field types, or missing choice lists.\n" +
			"Exits 1 when any row violates.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return runLint(args[0], mapFile, reportFile, formName, exportMap, formatter)
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "user override mapping JSON")
	cmd.Flags().StringVar(&reportFile, "report", "", "write the full per-line report JSON here")
	cmd.Flags().StringVar(&formName, "form-name", "", "force this Form Name for every row")
	cmd.Flags().StringVar(&exportMap, "export-map", "", "write the combined column mapping JSON here")

	return cmd
}

// lintResult is the JSON payload for lint's --format json output.
type lintResult struct {
	Accept  int    `json:"accept"`
	Violate int    `json:"violate"`
	Ignore  int    `json:"ignore,omitempty"`
	Report  string `json:"report,omitempty"`
}

func (r lintResult) String() string {
	var b strings.Builder
	lint.Summary{Accept: r.Accept, Violate: r.Violate, Ignore: r.Ignore}.Print(&b)
	if r.Report != "" {
		fmt.Fprintf(&b, "Report written to %s\n", r.Report)
	}
	return strings.TrimRight(b.String(), "\n")
}

func runLint(dictPath, mapFile, reportFile, formName, exportMap string, formatter *OutputFormatter) error {
	overrides, err := LoadOverrides(mapFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load overrides", err)
	}
	if overrides.FormName != "" && formName == "" {
		formName = overrides.FormName
	}

	src, err := workbook.Open(dictPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open dictionary", err)
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// Single-sheet tool: lint reads the first sheet of a workbook.
	sheetName := src.SheetNames()[0]
	sheet, err := src.Sheet(sheetName)
	if err != nil {
		return WrapExitError(ExitCommandError, "read dictionary", err)
	}

	res := resolve.Headers(sheet, overrides.Columns)
	resolve.Apply(sheet, res.Mapping)

	if formName != "" {
		sheet.EnsureColumn(schema.ColFormName)
		for i := 0; i < sheet.NumRows(); i++ {
			sheet.Set(i, schema.ColFormName, formName)
		}
	} else if !sheet.HasColumn(schema.ColFormName) {
		return NewExitError(ExitFailure,
			"missing required column 'Form Name' (or specify --form-name)")
	}

	if missing := res.Missing(); len(missing) > 0 {
		remaining := missing[:0]
		for _, m := range missing {
			if m != schema.ColFormName || !sheet.HasColumn(schema.ColFormName) {
				remaining = append(remaining, m)
			}
		}
		if len(remaining) > 0 {
			return NewExitError(ExitFailure,
				fmt.Sprintf("missing required columns: %s", strings.Join(remaining, ", ")))
		}
	}

	if exportMap != "" {
		if err := writeExportMap(exportMap, res.Mapping, formName); err != nil {
			return WrapExitError(ExitCommandError, "export mapping", err)
		}
		formatter.VerboseLog("exported column mapping to %s", exportMap)
	}

	records, sum := lint.Run(sheet)
	if reportFile != "" {
		if err := lint.WriteReport(reportFile, records); err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}
	}

	if err := formatter.Success(lintResult{
		Accept:  sum.Accept,
		Violate: sum.Violate,
		Ignore:  sum.Ignore,
		Report:  reportFile,
	}); err != nil {
		return err
	}

	if !sum.Clean() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d row(s) violate", sum.Violate))
	}
	return nil
}
