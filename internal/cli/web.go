package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/cache"
	"github.com/ppiankov/schemeqa/internal/model"
	"github.com/ppiankov/schemeqa/internal/web"
	"github.com/ppiankov/schemeqa/internal/worker"
)

var (
	webURLs    []string
	webJSON    bool
	webNoCache bool
	webTimeout time.Duration
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web [question...]",
	Short: "Answer a question from live web pages",
	Long: `Web fetches the given pages (robots.txt and rate limits respected),
extracts their visible text, splits it into chunks and answers the
question from those chunks only. The first lines of the answer are
printed as a summary.

Without --url the configured pages are used (by default the
institution's financial aid page).

Example:
  schemeqa web "What bursaries can I apply for?"
  schemeqa web --url https://example.edu/aid --url https://example.edu/loans "loan interest?"`,
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringSliceVar(&webURLs, "url", nil, "page to answer from (repeatable; default from config)")
	webCmd.Flags().BoolVar(&webJSON, "json", false, "print the full answer as JSON")
	webCmd.Flags().BoolVar(&webNoCache, "no-cache", false, "disable the page cache (force fresh fetch)")
	webCmd.Flags().DurationVar(&webTimeout, "timeout", 2*time.Minute, "overall timeout")
}

// newFetcher builds the page fetcher with its cache and per-domain limiter
func newFetcher(cfg *model.Config, logger *zap.Logger) (*web.Fetcher, io.Closer, error) {
	fetcher := web.NewFetcher(
		time.Duration(cfg.HTTP.Timeout)*time.Second,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.RespectRobots,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)).
		WithLogger(logger)

	pageCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("init page cache: %w", err)
	}
	var closer io.Closer
	if pageCache != nil {
		fetcher.WithCache(pageCache, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
		closer, _ = pageCache.(io.Closer)
	}
	return fetcher, closer, nil
}

func runWeb(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	if webNoCache {
		s.cfg.Cache.Enabled = false
	}
	urls := webURLs
	if len(urls) == 0 {
		urls = s.cfg.Web.URLs
	}

	fetcher, closer, err := newFetcher(s.cfg, s.logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), webTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Fetching %d page(s)...\n", len(urls))
	}

	answerer := web.NewAnswerer(fetcher, s.completer, web.OptionsFromModel(s.cfg.Web), s.logger)
	ans, err := answerer.Ask(ctx, question, urls)
	if err != nil {
		return fmt.Errorf("web answer: %w", err)
	}

	out := cmd.OutOrStdout()
	if webJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	fmt.Fprintln(out, "Summary:")
	for _, line := range ans.Summary {
		fmt.Fprintln(out, indent(line, "  "))
	}
	if verbose {
		fmt.Fprintln(out)
		renderAnswer(out, ans.Answer, s.cfg.Output.Raw)
	}
	fmt.Fprintln(out)
	renderSources(out, ans.Sources)
	return nil
}

func renderSources(w io.Writer, sources []web.Source) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Source", "Title", "Chunks", "Used", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, WidthMax: maxCellWidth}, {Number: 5, WidthMax: 40}})
	for _, src := range sources {
		status := "fetched"
		switch {
		case src.Error != "":
			status = src.Error
		case src.FromCache:
			status = "cached"
		}
		t.AppendRow(table.Row{src.URL, src.Title, src.Chunks, src.Used, status})
	}
	t.Render()
}
