// Command demo plays a narrative in the terminal. Type commands on stdin while it
// runs: play, pause, toggle (p), reset (r), set <input> <value>, flip <input>,
// replay [stage].
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/extensibility"
	"github.com/comalice/narrativex/internal/primitives"
	"github.com/comalice/narrativex/internal/production"
	"github.com/comalice/narrativex/internal/vignettes"
	"github.com/comalice/narrativex/realtime"
)

type options struct {
	demo     string
	file     string
	dir      string
	tick     time.Duration
	duration time.Duration
	list     bool
	dot      bool
	export   bool
	stats    bool
	verbose  bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] No .env file found, using system environment variables")
	} else {
		log.Println("[INFO] Loaded environment variables from .env file")
	}

	opts := options{}
	flag.StringVar(&opts.demo, "demo", envOr("NARRATIVEX_DEMO", "csrf"), "vignette or scenario id to play")
	flag.StringVar(&opts.file, "file", "", "scenario file (.yaml, .yml or .json) to play instead of -demo")
	flag.StringVar(&opts.dir, "dir", os.Getenv("NARRATIVEX_SCENARIOS"), "directory of scenario files searched before the built-in vignettes")
	flag.DurationVar(&opts.tick, "tick", envDuration("NARRATIVEX_TICK", 16667*time.Microsecond), "runtime tick rate")
	flag.DurationVar(&opts.duration, "for", 0, "stop after this long (0 runs until interrupted)")
	flag.BoolVar(&opts.list, "list", false, "list available scenarios and exit")
	flag.BoolVar(&opts.dot, "dot", false, "print the scenario as Graphviz DOT and exit")
	flag.BoolVar(&opts.export, "json", false, "print the scenario as JSON and exit")
	flag.BoolVar(&opts.stats, "stats", false, "report process memory and CPU every 5s")
	flag.BoolVar(&opts.verbose, "v", false, "log playback transitions and custom actions")
	flag.Parse()

	if err := run(opts); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogs, err := openCatalogs(opts.dir)
	if err != nil {
		return err
	}
	if opts.list {
		return list(ctx, catalogs)
	}

	cfg, err := resolve(ctx, opts, catalogs)
	if err != nil {
		return err
	}
	log.Printf("[INFO] Scenario %s (%s, version %s)", cfg.ID, cfg.Kind, primitives.ComputeVersion(cfg))

	viz := &production.DefaultVisualizer{}
	switch {
	case opts.dot:
		fmt.Print(viz.ExportDOT(cfg, ""))
		return nil
	case opts.export:
		data, err := viz.ExportJSON(cfg)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	quiet := log.New(io.Discard, "", 0)
	if opts.verbose {
		quiet = logger
	}

	actions := extensibility.NewDefaultActionRunner().
		Register("print", func(c *narrativex.Cue, cue primitives.CueConfig) error {
			fmt.Printf("    %s\n", cue.Text)
			return nil
		})
	s := narrativex.NewScheduler()
	eng, err := core.Compile(cfg, s,
		core.WithActionRunner(extensibility.NewLoggingActionRunner(actions, quiet)),
		core.WithGuardEvaluator(extensibility.NewExpressionGuardEvaluator()),
		core.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	ctl, err := narrativex.NewController(s, eng, narrativex.WithLogger(quiet))
	if err != nil {
		return err
	}

	snaps := make(chan narrativex.Snapshot, 64)
	publisher := production.NewChannelPublisher(snaps)
	rt := realtime.NewRuntime(ctl, realtime.Config{
		TickRate:  opts.tick,
		Publisher: production.NewChangePublisher(publisher),
		Logger:    logger,
	})

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := rt.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		err := rt.Stop()
		publisher.Close()
		if dropped := publisher.Dropped(); dropped > 0 {
			log.Printf("[WARN] %d snapshots dropped by a slow terminal", dropped)
		}
		return err
	})
	g.Go(func() error {
		render(snaps)
		return nil
	})
	if opts.stats {
		g.Go(func() error { return reportStats(ctx, 5*time.Second) })
	}

	// Reading stdin blocks outside of ctx, so the reader is not part of the group.
	source := extensibility.NewLineCommandSource(os.Stdin, logger).WithReplayStage(cfg.ReplayFrom)
	go func() {
		if err := source.Run(ctx, rt); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("[WARN] command input: %v", err)
		}
	}()

	err = g.Wait()
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func openCatalogs(dir string) ([]core.Catalog, error) {
	var catalogs []core.Catalog
	if dir != "" {
		c, err := production.NewDirCatalog(dir, production.FormatYAML)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}
	builtin, err := vignettes.Catalog()
	if err != nil {
		return nil, err
	}
	return append(catalogs, builtin), nil
}

func resolve(ctx context.Context, opts options, catalogs []core.Catalog) (*primitives.ScenarioConfig, error) {
	if opts.file != "" {
		return production.LoadScenario(opts.file)
	}
	for _, c := range catalogs {
		cfg, err := c.Get(ctx, opts.demo)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		return cfg, err
	}
	return nil, fmt.Errorf("scenario %q: %w", opts.demo, core.ErrNotFound)
}

func list(ctx context.Context, catalogs []core.Catalog) error {
	seen := make(map[string]bool)
	for _, c := range catalogs {
		ids, err := c.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			cfg, err := c.Get(ctx, id)
			if err != nil {
				log.Printf("[WARN] %s: %v", id, err)
				continue
			}
			fmt.Printf("%-20s %-9s %s\n", id, cfg.Kind, cfg.Title)
		}
	}
	return nil
}

// render prints a line whenever the stage changes and an indented line for every
// other visible change.
func render(snaps <-chan narrativex.Snapshot) {
	var last narrativex.Snapshot
	for snap := range snaps {
		if snap.ActiveStageID != last.ActiveStageID || snap.Playing != last.Playing {
			title := ""
			if n, ok := snap.Payload.(core.Narration); ok {
				title = n.Title
				if n.Description != "" {
					title += ": " + n.Description
				}
			}
			state := "▶"
			if !snap.Playing {
				state = "■"
			}
			fmt.Printf("%s [%s] %s\n", state, snap.ActiveStageID, title)
		}
		for field, text := range snap.Text {
			if text != last.Text[field] && text != "" {
				fmt.Printf("    %s: %s\n", field, text)
			}
		}
		if len(snap.Log) > 0 && strings.Join(snap.Log, "\n") != strings.Join(last.Log, "\n") {
			fmt.Printf("    > %s\n", snap.Log[len(snap.Log)-1])
		}
		if snap.Parked && !last.Parked {
			fmt.Println("    (finished; type 'replay' or 'reset')")
		}
		last = snap
	}
}

func reportStats(ctx context.Context, every time.Duration) error {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			mem, err := p.MemoryInfoWithContext(ctx)
			if err != nil {
				log.Printf("[WARN] stats: %v", err)
				continue
			}
			cpu, _ := p.CPUPercentWithContext(ctx)
			threads, _ := p.NumThreadsWithContext(ctx)
			log.Printf("[STATS] rss=%.1fMiB cpu=%.1f%% threads=%d", float64(mem.RSS)/(1<<20), cpu, threads)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a duration, using %v", key, v, fallback)
		return fallback
	}
	return d
}
