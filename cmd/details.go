package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/bookscout/internal/store"
)

// DetailsCmd represents the details command
type DetailsCmd struct {
	Ref     string        `arg:"" name:"url-or-path" help:"Detail page URL, or a path relative to the store"`
	Timeout time.Duration `help:"Timeout for the page fetch (defaults to store.timeout in config)"`
	Output  string        `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (c *DetailsCmd) Run(ctx context.Context) error {
	ref := strings.TrimSpace(c.Ref)
	if ref == "" {
		return fmt.Errorf("detail URL or path is required")
	}

	s, err := newStore()
	if err != nil {
		return err
	}

	r := &store.Result{DetailItem: ref}
	if _, err := s.GetDetails(ctx, r, fetchTimeout(c.Timeout)); err != nil {
		return fmt.Errorf("failed to fetch details: %w", err)
	}

	if err := writeResults(stdout, []*store.Result{r}, c.Output); err != nil {
		return err
	}
	return writeDetailURL(s, r)
}
