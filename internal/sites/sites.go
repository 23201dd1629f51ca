// Package sites maps configured site names to their extraction rules.
package sites

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lepinkainen/bookscout/internal/sites/adlibris"
	"github.com/lepinkainen/bookscout/internal/store"
)

// Factory builds rules for a base URL. An empty base URL means the site's
// own default.
type Factory func(baseURL string) store.Rules

var registry = map[string]Factory{
	adlibris.EmbeddedName: func(baseURL string) store.Rules {
		return adlibris.NewEmbedded(baseURL)
	},
	adlibris.MicrodataName: func(baseURL string) store.Rules {
		return adlibris.NewMicrodata(baseURL)
	},
}

// Lookup returns the rules registered under name.
func Lookup(name, baseURL string) (store.Rules, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(baseURL), nil
}

// Names lists the registered site names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
