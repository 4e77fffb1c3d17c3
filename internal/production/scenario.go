package production

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a file name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported scenario file %q", name)
	}
}

// DecodeScenario decodes and validates a scenario. Unknown fields are rejected.
func DecodeScenario(data []byte, format Format) (*primitives.ScenarioConfig, error) {
	var cfg primitives.ScenarioConfig
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation after load: %w", err)
	}
	return &cfg, nil
}

// EncodeScenario encodes a scenario.
func EncodeScenario(cfg *primitives.ScenarioConfig, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("yaml marshal: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("json marshal: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// LoadScenario reads a scenario file, choosing the format from its extension.
func LoadScenario(path string) (*primitives.ScenarioConfig, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := DecodeScenario(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteScenario writes a scenario file, choosing the format from its extension.
func WriteScenario(path string, cfg *primitives.ScenarioConfig) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := EncodeScenario(cfg, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DirCatalog is a core.Catalog over a directory of scenario files named <id>.<ext>.
type DirCatalog struct {
	dir    string
	format Format
}

// NewDirCatalog creates a DirCatalog, ensuring the directory exists. Save writes in
// format; Get and List read every supported extension.
func NewDirCatalog(dir string, format Format) (*DirCatalog, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DirCatalog{dir: dir, format: format}, nil
}

// Save validates cfg and writes it as <id>.<format>.
func (c *DirCatalog) Save(ctx context.Context, cfg *primitives.ScenarioConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return WriteScenario(filepath.Join(c.dir, cfg.ID+"."+string(c.format)), cfg)
}

// Get implements core.Catalog.
func (c *DirCatalog) Get(ctx context.Context, id string) (*primitives.ScenarioConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(c.dir, id+ext)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		cfg, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if cfg.ID != id {
			return nil, fmt.Errorf("%s: scenario id %q does not match file name", path, cfg.ID)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("scenario %q: %w", id, core.ErrNotFound)
}

// List implements core.Catalog.
func (c *DirCatalog) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatOf(e.Name()); err != nil {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
