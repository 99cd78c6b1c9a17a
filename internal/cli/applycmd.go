package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dictools/rcmod/internal/dsl"
	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/trace"
	"github.com/dictools/rcmod/internal/workbook"
)

// NewApplyCommand creates the apply command: run a script against a
// source workbook and write the normalized dictionary.
func NewApplyCommand(opts *RootOptions) *cobra.Command {
	var (
		inFile  string
		outFile string
		mapFile string
		traceDB string
	)

	cmd := &cobra.Command{
		Use:   "apply <script>",
		Short: "Run a corrective script and write the normalized output",
		Long: "Executes the script line by line. Malformed lines and unknown primitives\n" +
			"are logged and skipped; a contract violation aborts with no output file\n" +
			"written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return runApply(cmd.Context(), args[0], inFile, outFile, mapFile, traceDB, formatter)
		},
	}

	cmd.Flags().StringVarP(&inFile, "in", "i", "", "source dictionary (.xlsx or .csv)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "normalized output path, .xlsx or .csv (required)")
	cmd.Flags().StringVar(&mapFile, "map", "", "mapping descriptor applied during ProcessSheet")
	cmd.Flags().StringVar(&traceDB, "trace-db", "", "record the run in this SQLite trace database")
	cmd.MarkFlagRequired("out")

	return cmd
}

type applyResult struct {
	Output string `json:"output"`
	Rows   int    `json:"rows"`
	RunID  string `json:"run_id,omitempty"`
}

func (r applyResult) String() string {
	s := fmt.Sprintf("Wrote %d row(s) to %s", r.Rows, r.Output)
	if r.RunID != "" {
		s += fmt.Sprintf(" (run %s)", r.RunID)
	}
	return s
}

func runApply(ctx context.Context, scriptPath, inFile, outFile, mapFile, traceDB string, formatter *OutputFormatter) error {
	var src workbook.Source
	if inFile != "" {
		opened, err := workbook.Open(inFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "open dictionary", err)
		}
		if closer, ok := opened.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		src = opened
	}

	var execOpts []dsl.Option
	if mapFile != "" {
		desc, err := mapping.Load(mapFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "load descriptor", err)
		}
		execOpts = append(execOpts, dsl.WithDescriptor(desc))
	}

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open script", err)
	}

	var (
		obs      dsl.Observer
		recorder *trace.Recorder
	)
	if traceDB != "" {
		store, err := trace.Open(traceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "open trace database", err)
		}
		defer store.Close()
		recorder, err = store.BeginRun(ctx, scriptPath, inFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "begin trace run", err)
		}
		obs = recorder.Observer()
	}

	exec := dsl.NewExecutor(src, execOpts...)
	// A script with no ProcessSheet is a flat row fix; load the source's
	// first sheet so its edits land on real dictionary rows.
	if src != nil && !dsl.UsesSheets(script) {
		if err := exec.SeedSheet(src.SheetNames()[0]); err != nil {
			return WrapExitError(ExitCommandError, "load dictionary", err)
		}
	}
	runErr := exec.RunScript(bytes.NewReader(script), obs)

	if recorder != nil {
		status := "ok"
		if runErr != nil {
			status = "fatal"
		}
		if err := recorder.Finish(ctx, status); err != nil {
			slog.Warn("finishing trace run", "error", err)
		}
		if err := recorder.Err(); err != nil {
			slog.Warn("trace recording incomplete", "error", err)
		}
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "script failed", runErr)
	}

	out := exec.Finalize()
	if err := writeTable(outFile, exec.OutputName(), out); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}

	result := applyResult{Output: outFile, Rows: out.NumRows()}
	if recorder != nil {
		result.RunID = recorder.RunID()
	}
	return formatter.Success(result)
}
