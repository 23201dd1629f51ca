package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/store"
	"github.com/lepinkainen/bookscout/internal/tui"
)

// SearchCmd represents the search command
type SearchCmd struct {
	Query       []string      `arg:"" help:"Search terms"`
	Max         int           `short:"n" help:"Maximum number of results (defaults to store.maxresults in config)"`
	Timeout     time.Duration `help:"Timeout for each page fetch (defaults to store.timeout in config)"`
	Details     bool          `short:"d" help:"Fetch the detail page of every result"`
	Interactive bool          `short:"i" help:"Pick a result interactively and show its details"`
	Output      string        `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (c *SearchCmd) Run(ctx context.Context) error {
	query := strings.TrimSpace(strings.Join(c.Query, " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	maxResults := c.Max
	if maxResults == 0 {
		maxResults = config.MaxResults
	}
	timeout := fetchTimeout(c.Timeout)

	s, err := newStore()
	if err != nil {
		return err
	}

	seq, err := s.Search(ctx, query, maxResults, timeout)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results := slices.Collect(seq)
	slog.Info("Search finished", "site", s.Site().Name, "query", query, "results", len(results))

	if c.Details {
		for _, r := range results {
			fetchDetails(ctx, s, r, timeout)
		}
	}

	if !c.Interactive {
		return writeResults(stdout, results, c.Output)
	}

	selection, err := selectResult(query, results)
	if err != nil {
		if errors.IsAbortedError(err) {
			slog.Info("Selection aborted")
			return nil
		}
		return err
	}
	if selection.Action != tui.ActionSelected || selection.Selection == nil {
		return nil
	}

	r := selection.Selection
	if !c.Details {
		fetchDetails(ctx, s, r, timeout)
	}
	if err := writeResults(stdout, []*store.Result{r}, c.Output); err != nil {
		return err
	}
	return writeDetailURL(s, r)
}

// fetchDetails enriches r in place. Failures leave r as it was.
func fetchDetails(ctx context.Context, s *store.Store, r *store.Result, timeout time.Duration) {
	if _, err := s.GetDetails(ctx, r, timeout); err != nil {
		slog.Warn("Failed to fetch details", "title", r.Title, "error", err)
	}
}

func writeDetailURL(s *store.Store, r *store.Result) error {
	detailURL, err := s.DetailURL(r)
	if err != nil {
		slog.Debug("No detail page to open", "title", r.Title, "error", err)
		return nil
	}
	_, err = fmt.Fprintf(stdout, "Open in browser: %s\n", detailURL)
	return err
}

func fetchTimeout(flag time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return config.Timeout
}
