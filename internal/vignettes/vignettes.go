// Package vignettes embeds the built-in security demonstrations.
package vignettes

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
	"github.com/comalice/narrativex/internal/production"
)

//go:embed scenarios/*.yaml
var files embed.FS

// Names returns the ids of the built-in vignettes, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(files, "scenarios")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// Load decodes and validates one built-in vignette.
func Load(id string) (*primitives.ScenarioConfig, error) {
	data, err := files.ReadFile("scenarios/" + id + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("vignette %q: %w", id, core.ErrNotFound)
	}
	cfg, err := production.DecodeScenario(data, production.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("vignette %s: %w", id, err)
	}
	return cfg, nil
}

// Catalog returns a catalog holding every built-in vignette.
func Catalog() (*core.MemoryCatalog, error) {
	var all []*primitives.ScenarioConfig
	for _, id := range Names() {
		cfg, err := Load(id)
		if err != nil {
			return nil, err
		}
		all = append(all, cfg)
	}
	return core.NewMemoryCatalog(all...)
}
