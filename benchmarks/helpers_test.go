package benchmarks

import (
	"testing"
	"time"
)

func TestGeneratedConfigsValidate(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		tl := GenTimelineConfig(n, time.Second)
		if err := tl.Validate(); err != nil {
			t.Errorf("timeline n=%d: %v", n, err)
		}
		ch := GenChainConfig(n, 100*time.Millisecond)
		if err := ch.Validate(); err != nil {
			t.Errorf("chain n=%d: %v", n, err)
		}
	}
}

func TestGeneratedTimelineRuns(t *testing.T) {
	ctl := MustCompile(GenTimelineConfig(3, time.Second))
	ctl.Advance(1500 * time.Millisecond)
	snap := ctl.Snapshot()
	if snap.ActiveStageID != "s1" {
		t.Errorf("expected s1 at 1.5s, got %s", snap.ActiveStageID)
	}
	if snap.Log[len(snap.Log)-1] != "leaked" {
		t.Errorf("expected leaked log entry, got %v", snap.Log)
	}
}

func TestRoundTripYAML(t *testing.T) {
	cfg := GenChainConfig(4, 250*time.Millisecond)
	out, err := RoundTripYAML(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Steps) != 4 || out.Steps[3].At != cfg.Steps[3].At || out.Steps[1].When != "!protection" {
		t.Errorf("round trip lost data: %+v", out.Steps)
	}
}
