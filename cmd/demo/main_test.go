package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
	"github.com/comalice/narrativex/internal/production"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	custom := primitives.NewScenarioConfig("csrf", primitives.KindTimeline).
		AddStage(primitives.NewStageConfig("local", time.Second))
	if err := production.WriteScenario(filepath.Join(dir, "csrf.yaml"), custom); err != nil {
		t.Fatal(err)
	}

	catalogs, err := openCatalogs(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := resolve(ctx, options{demo: "csrf"}, catalogs)
	if err != nil || cfg.Kind != primitives.KindTimeline {
		t.Errorf("directory scenario should shadow the vignette, got %+v, %v", cfg, err)
	}
	cfg, err = resolve(ctx, options{demo: "xss"}, catalogs)
	if err != nil || cfg.ID != "xss" {
		t.Errorf("expected the built-in xss vignette, got %+v, %v", cfg, err)
	}
	if _, err := resolve(ctx, options{demo: "phishing"}, catalogs); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	cfg, err = resolve(ctx, options{file: filepath.Join(dir, "csrf.yaml")}, nil)
	if err != nil || cfg.Stages[0].ID != "local" {
		t.Errorf("expected the file scenario, got %+v, %v", cfg, err)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("NARRATIVEX_TICK", "5ms")
	if got := envDuration("NARRATIVEX_TICK", time.Second); got != 5*time.Millisecond {
		t.Errorf("envDuration = %v", got)
	}
	t.Setenv("NARRATIVEX_TICK", "fast")
	if got := envDuration("NARRATIVEX_TICK", time.Second); got != time.Second {
		t.Errorf("invalid value should fall back, got %v", got)
	}
	os.Unsetenv("NARRATIVEX_DEMO")
	if got := envOr("NARRATIVEX_DEMO", "csrf"); got != "csrf" {
		t.Errorf("envOr = %q", got)
	}
}

func TestRunForDuration(t *testing.T) {
	opts := options{demo: "sqli", tick: 5 * time.Millisecond, duration: 100 * time.Millisecond}
	if err := run(opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}
