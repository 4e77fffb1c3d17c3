package benchmarks

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/vignettes"
)

func BenchmarkCompileTimeline(b *testing.B) {
	for _, n := range []int{5, 50, 500} {
		b.Run(fmt.Sprintf("stages=%d", n), func(b *testing.B) {
			cfg := GenTimelineConfig(n, time.Second)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := core.Compile(cfg, narrativex.NewScheduler()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileChain(b *testing.B) {
	for _, n := range []int{5, 50, 500} {
		b.Run(fmt.Sprintf("steps=%d", n), func(b *testing.B) {
			cfg := GenChainConfig(n, 100*time.Millisecond)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := core.Compile(cfg, narrativex.NewScheduler()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkYAMLRoundTrip(b *testing.B) {
	cfg := GenTimelineConfig(20, time.Second)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RoundTripYAML(cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkVignetteLoop plays one full 30s pass of each bundled vignette per iteration.
func BenchmarkVignetteLoop(b *testing.B) {
	for _, name := range vignettes.Names() {
		b.Run(name, func(b *testing.B) {
			cfg, err := vignettes.Load(name)
			if err != nil {
				b.Fatal(err)
			}
			ctl := MustCompile(cfg)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ctl.Reset()
				ctl.Advance(30 * time.Second)
			}
		})
	}
}

func BenchmarkMemoryFootprint(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("stages=%d", n), func(b *testing.B) {
			cfg := GenTimelineConfig(n, time.Second)
			numControllers := 100
			var before runtime.MemStats
			runtime.ReadMemStats(&before)
			ctls := make([]*narrativex.Controller, numControllers)
			for i := range ctls {
				ctls[i] = MustCompile(cfg)
			}
			runtime.GC()
			var after runtime.MemStats
			runtime.ReadMemStats(&after)
			perController := (after.TotalAlloc - before.TotalAlloc) / uint64(numControllers)
			b.ReportMetric(float64(perController)/1024, "KB/controller")
			runtime.KeepAlive(ctls)
		})
	}
}
