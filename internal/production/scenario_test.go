// Tests for scenario files and DirCatalog.
package production

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
)

const idorYAML = `
id: idor
title: Insecure direct object reference
kind: chain
loop: true
defaults:
  text: {url: "www.bank.com/user?id=100"}
  counters: {profile: 100}
steps:
  - at: 0
    stage: url
  - at: 500ms
    stage: url
    cues:
      - action: set_counter
        target: profile
        value: 101
  - at: 2.5s
    stage: success
    when: "!protection"
`

func sampleScenario() *primitives.ScenarioConfig {
	zero := 0
	cfg := primitives.NewScenarioConfig("csrf", primitives.KindChain)
	cfg.Title = "Cross-site request forgery"
	cfg.ReplayFrom = "fake_ad"
	cfg.Defaults = primitives.DefaultsConfig{
		Counters: map[string]int{"victim": 1000, "attacker": 0},
		Inputs:   map[string]any{"protection": false},
	}
	cfg.AddStep(primitives.NewStepConfig(0, "safe_bank"))
	cfg.AddStep(primitives.NewStepConfig(3*time.Second, "fake_ad").WithTitle("Free prize", "Click here"))
	cfg.AddStep(primitives.NewStepConfig(7*time.Second, "attack_flow").
		AddCue(primitives.CueConfig{
			Action: primitives.ActionAdd, Target: "victim", Delta: -10, Min: &zero,
			Every: primitives.Duration(50 * time.Millisecond), Times: 20,
		}))
	return cfg
}

func TestDecodeScenarioYAML(t *testing.T) {
	cfg, err := DecodeScenario([]byte(idorYAML), FormatYAML)
	if err != nil {
		t.Fatalf("DecodeScenario failed: %v", err)
	}
	if cfg.Kind != primitives.KindChain || !cfg.Loop || len(cfg.Steps) != 3 {
		t.Fatalf("unexpected scenario: %+v", cfg)
	}
	if cfg.Steps[2].At.Std() != 2500*time.Millisecond || cfg.Steps[2].When != "!protection" {
		t.Errorf("unexpected step: %+v", cfg.Steps[2])
	}
	if cfg.Steps[1].Cues[0].Value != 101 {
		t.Errorf("expected int value, got %#v", cfg.Steps[1].Cues[0].Value)
	}
	if cfg.Defaults.Text["url"] != "www.bank.com/user?id=100" {
		t.Errorf("defaults not decoded: %+v", cfg.Defaults)
	}
}

func TestDecodeScenarioErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   string
	}{
		{"unknown field", "id: x\nkind: chain\nsteps: [{at: 0}]\ncolour: red\n", FormatYAML, "yaml unmarshal"},
		{"invalid", "id: x\nkind: chain\n", FormatYAML, "config validation"},
		{"bad duration", "id: x\nkind: chain\nsteps: [{at: soon}]\n", FormatYAML, "invalid duration"},
		{"json unknown field", `{"id":"x","kind":"chain","steps":[{"at":0}],"extra":1}`, FormatJSON, "json unmarshal"},
		{"format", "", Format("toml"), "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeScenario([]byte(tt.data), tt.format)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestScenarioFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"csrf.yaml", "csrf.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := sampleScenario()
			if err := WriteScenario(path, want); err != nil {
				t.Fatalf("WriteScenario failed: %v", err)
			}
			got, err := LoadScenario(path)
			if err != nil {
				t.Fatalf("LoadScenario failed: %v", err)
			}
			if primitives.ComputeVersion(got) != primitives.ComputeVersion(want) {
				t.Errorf("round trip changed the scenario:\n got %+v\nwant %+v", got, want)
			}
			if !reflect.DeepEqual(got.StageIDs(), want.StageIDs()) {
				t.Errorf("stage ids differ: %v vs %v", got.StageIDs(), want.StageIDs())
			}
		})
	}

	if _, err := LoadScenario(filepath.Join(dir, "csrf.toml")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDirCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewDirCatalog(dir, FormatJSON)
	if err != nil {
		t.Fatalf("NewDirCatalog failed: %v", err)
	}
	if err := c.Save(ctx, sampleScenario()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "idor.yml"), []byte(idorYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := c.List(ctx)
	if err != nil || !slices.Equal(ids, []string{"csrf", "idor"}) {
		t.Errorf("List() = %v, %v", ids, err)
	}

	got, err := c.Get(ctx, "idor")
	if err != nil || got.Title != "Insecure direct object reference" {
		t.Errorf("Get(idor) = %+v, %v", got, err)
	}
	if _, err := c.Get(ctx, "xss"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected core.ErrNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "renamed.yaml"), []byte(idorYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "renamed"); err == nil {
		t.Error("expected id mismatch error")
	}

	if err := c.Save(ctx, primitives.NewScenarioConfig("", primitives.KindChain)); err == nil {
		t.Error("expected validation error on save")
	}
	if _, err := NewDirCatalog(dir, Format("xml")); err == nil {
		t.Error("expected unsupported format error")
	}
}

// Compile-time check that DirCatalog satisfies core.Catalog.
var _ core.Catalog = (*DirCatalog)(nil)
