// Tests for DOT and JSON export.
package production

import (
	"strings"
	"testing"
	"time"

	"github.com/comalice/narrativex/internal/primitives"
)

func TestDefaultVisualizer_ExportDOT_Timeline(t *testing.T) {
	v := &DefaultVisualizer{}
	config := primitives.NewScenarioConfig("sqli", primitives.KindTimeline).
		AddStage(primitives.NewStageConfig("normal", 4*time.Second)).
		AddStage(primitives.NewStageConfig("injection", 4*time.Second).
			AddCue(primitives.CueConfig{Action: primitives.ActionSetFlag, Target: "arrows", Value: true}))
	config.Loop = true
	dot := v.ExportDOT(config, "injection")

	for _, want := range []string{
		`digraph "sqli" {`,
		`"normal" [label="normal\n4s"];`,
		`"injection" [label="injection\n4s\n1 cue(s)" style=filled fillcolor=lightgreen];`,
		`"normal" -> "injection" [label="4s"];`,
		`"injection" -> "normal" [label="loop" style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestDefaultVisualizer_ExportDOT_Chain(t *testing.T) {
	v := &DefaultVisualizer{}
	config := sampleScenario()
	guarded := primitives.NewStepConfig(12*time.Second, "protection")
	guarded.When = "protection"
	config.AddStep(guarded)
	dot := v.ExportDOT(config, "fake_ad")

	for _, want := range []string{
		`label="Cross-site request forgery";`,
		`"step_1" [label="fake_ad\n@3s" style=filled fillcolor=lightgreen];`,
		`"step_3" [label="protection\n@12s\nwhen protection"];`,
		`"step_0" -> "step_1" [label="+3s"];`,
		`"step_3" -> "step_1" [label="replay" style=dotted];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "loop") {
		t.Error("parked chain should have no loop edge")
	}
}

func TestDefaultVisualizer_ExportJSON(t *testing.T) {
	v := &DefaultVisualizer{}
	data, err := v.ExportJSON(sampleScenario())
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	for _, want := range []string{`"id": "csrf"`, `"at": "7s"`, `"replayFrom": "fake_ad"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}
