package cmd

import (
	"fmt"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/lepinkainen/bookscout/internal/sites"
)

// SitesCmd represents the sites command
type SitesCmd struct{}

func (c *SitesCmd) Run() error {
	for _, name := range sites.Names() {
		rules, err := sites.Lookup(name, "")
		if err != nil {
			return err
		}

		marker := " "
		if name == config.Site {
			marker = "*"
		}
		if _, err := fmt.Fprintf(stdout, "%s %-20s %s\n", marker, name, rules.Site().BaseURL); err != nil {
			return err
		}
	}
	return nil
}
