// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"time"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
	"gopkg.in/yaml.v3"
)

// GenTimelineConfig creates a looping timeline with n stages of d each. Every stage
// types a short line, bumps a counter on a repeat and logs a guarded result.
func GenTimelineConfig(n int, d time.Duration) *primitives.ScenarioConfig {
	if n < 1 {
		n = 1
	}
	cfg := primitives.NewScenarioConfig(fmt.Sprintf("timeline_%d", n), primitives.KindTimeline)
	cfg.Loop = true
	cfg.Defaults = primitives.DefaultsConfig{
		Text:     map[string]string{"query": ""},
		Counters: map[string]int{"records": 0},
		Inputs:   map[string]any{"protection": false},
	}
	every := primitives.Duration(d / 10)
	for i := 0; i < n; i++ {
		st := primitives.NewStageConfig(fmt.Sprintf("s%d", i), d).
			AddCue(primitives.CueConfig{Action: primitives.ActionClearText, Target: "query"}).
			AddCue(primitives.CueConfig{
				Action:   primitives.ActionType,
				Target:   "query",
				Text:     "' OR '1'='1",
				Interval: primitives.Duration(10 * time.Millisecond),
			}).
			AddCue(primitives.CueConfig{
				Action: primitives.ActionAdd,
				Target: "records",
				Delta:  1,
				Every:  every,
				Times:  5,
			}).
			AddCue(primitives.CueConfig{
				At:     primitives.Duration(d / 2),
				Action: primitives.ActionLog,
				When:   "protection",
				Text:   "blocked",
				Else:   []primitives.CueConfig{{Action: primitives.ActionLog, Text: "leaked"}},
			})
		cfg.AddStage(st)
	}
	return cfg
}

// GenChainConfig creates a looping chain with n steps spaced gap apart, the first at
// gap. Odd steps are guarded on the protection input.
func GenChainConfig(n int, gap time.Duration) *primitives.ScenarioConfig {
	if n < 1 {
		n = 1
	}
	cfg := primitives.NewScenarioConfig(fmt.Sprintf("chain_%d", n), primitives.KindChain)
	cfg.Loop = true
	cfg.Defaults = primitives.DefaultsConfig{
		Counters: map[string]int{"balance": 1000},
		Inputs:   map[string]any{"protection": false},
	}
	for i := 0; i < n; i++ {
		st := primitives.NewStepConfig(time.Duration(i+1)*gap, fmt.Sprintf("step%d", i)).
			AddCue(primitives.CueConfig{Action: primitives.ActionAdd, Target: "balance", Delta: -1})
		if i%2 == 1 {
			st.When = "!protection"
		}
		cfg.AddStep(st)
	}
	return cfg
}

// MustCompile compiles cfg onto a fresh scheduler and wraps it in a Controller.
func MustCompile(cfg *primitives.ScenarioConfig) *narrativex.Controller {
	s := narrativex.NewScheduler()
	eng, err := core.Compile(cfg, s)
	if err != nil {
		panic(err)
	}
	ctl, err := narrativex.NewController(s, eng)
	if err != nil {
		panic(err)
	}
	return ctl
}

// RoundTripYAML encodes and decodes cfg, as a scenario file load would.
func RoundTripYAML(cfg *primitives.ScenarioConfig) (*primitives.ScenarioConfig, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var out primitives.ScenarioConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
