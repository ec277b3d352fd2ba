package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/schemeqa/internal/model"
	"github.com/ppiankov/schemeqa/internal/worker"
)

var (
	concurrency  int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer many questions from a file in parallel",
	Long: `Batch answers questions concurrently:
- Read questions from the input file (one per line, # comments and blank lines skipped)
- Answer them on a worker pool with a shared completion rate limit
- Write one JSON result per line, in input order

Example:
  schemeqa batch questions.txt
  schemeqa batch questions.txt --concurrency 8 --out results.jsonl
  schemeqa batch questions.txt --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "JSONL output file (default stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	questions, err := worker.ReadQuestionsFile(file)
	if err != nil {
		return fmt.Errorf("read questions: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  schemeqa batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Questions:    %d\n", len(questions))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", a.provider.Name())
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	var out io.Writer = cmd.OutOrStdout()
	if batchOut != "" {
		f, err := os.Create(batchOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
		out = f
	}

	processor := worker.NewBatchProcessor(a.pipeline, workers).WithProgress(func(done, total int) {
		if verbose {
			fmt.Fprintf(os.Stderr, "  %d/%d answered\n", done, total)
		}
	})
	results := processor.ProcessQuestions(ctx, questions)

	success, degraded, failed, err := writeResults(out, results)
	if err != nil {
		return err
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(results))
	fmt.Fprintf(os.Stderr, "  Answered:  %d\n", success)
	fmt.Fprintf(os.Stderr, "  Degraded:  %d\n", degraded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	if batchOut != "" {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOut)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// writeResults writes one JSON line per result and counts outcomes. Jobs
// that never produced a result (cancelled) are written with their error.
func writeResults(w io.Writer, results []*worker.AskResult) (success, degraded, failed int, err error) {
	enc := json.NewEncoder(w)
	for _, r := range results {
		res := r.Result
		switch {
		case res == nil:
			failed++
			msg := "no result"
			if r.Error != nil {
				msg = r.Error.Error()
			}
			res = &model.Result{Question: r.Question, Degraded: true, Error: msg}
		case res.Degraded:
			degraded++
		default:
			success++
		}
		if err := enc.Encode(res); err != nil {
			return success, degraded, failed, fmt.Errorf("write result: %w", err)
		}
	}
	return success, degraded, failed, nil
}
