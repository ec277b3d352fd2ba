package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	askRaw     bool
	askJSON    bool
	askCheck   bool
	askTimeout time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one question about financial assistance schemes",
	Long: `Ask identifies the schemes relevant to a question, looks up their
details and writes an answer based only on those details.

The question is taken from the arguments, or from stdin when none are given.

Example:
  schemeqa ask "I need help paying my tuition fees"
  echo "Is there an emergency grant?" | schemeqa ask
  schemeqa ask --json "what bursaries are there?"
  schemeqa ask --check --provider ollama --model llama3 "loans for overseas trips"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the answer without markdown rendering")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	askCmd.Flags().BoolVar(&askCheck, "check", false, "verify the LLM provider is reachable first")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout")
}

// readQuestion joins args, or reads stdin when there are none
func readQuestion(args []string, stdin io.Reader) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return "", errors.New("no question given")
	}
	return question, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	if askCheck {
		if !a.provider.IsAvailable(ctx) {
			return fmt.Errorf("LLM provider %s is not available", a.provider.Name())
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Provider %s is available\n", a.provider.Name())
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Answering: %s\n", question)
	}
	res := a.pipeline.Answer(ctx, question)

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	renderAnswer(out, res.Answer, askRaw || a.cfg.Output.Raw)
	fmt.Fprintln(out)
	renderDetails(out, res.Details)

	if res.Degraded {
		fmt.Fprintf(os.Stderr, "⚠ answer is degraded: %s\n", res.Error)
	}
	return nil
}
