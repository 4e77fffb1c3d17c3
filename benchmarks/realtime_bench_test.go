package benchmarks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/narrativex/realtime"
	"github.com/comalice/narrativex/testutil"
)

// BenchmarkRuntimeCommands measures concurrent command submission into a ticking
// runtime. Sends rejected by a full batch are reported, not treated as failures.
func BenchmarkRuntimeCommands(b *testing.B) {
	ctl := MustCompile(GenChainConfig(20, 100*time.Millisecond))
	rt := realtime.NewRuntime(ctl, realtime.Config{
		TickRate:           time.Millisecond,
		MaxCommandsPerTick: 1024,
	})
	if err := rt.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	numWorkers := 8
	perWorker := b.N / numWorkers
	if perWorker == 0 {
		perWorker = 1
	}
	var dropped int64
	var wg sync.WaitGroup
	b.ReportAllocs()
	b.ResetTimer()
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := realtime.Command{Type: realtime.CommandToggleInput, Name: "protection"}
			for i := 0; i < perWorker; i++ {
				if err := rt.Send(cmd); err != nil {
					atomic.AddInt64(&dropped, 1)
				}
			}
		}()
	}
	wg.Wait()
	b.StopTimer()
	b.ReportMetric(float64(dropped)/float64(numWorkers*perWorker), "dropped/op")
}

// BenchmarkRuntimeTick measures one runtime tick over a 20 stage timeline, driven by
// a manual clock.
func BenchmarkRuntimeTick(b *testing.B) {
	ctl := MustCompile(GenTimelineConfig(20, time.Second))
	clock := testutil.NewManualClock(time.Unix(0, 0))
	rec := &testutil.Recorder{}
	rt := realtime.NewRuntime(ctl, realtime.Config{
		TickRate:  100 * time.Microsecond,
		Clock:     clock,
		Publisher: rec,
	})
	if err := rt.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	defer rt.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Add(16 * time.Millisecond)
		target := rt.TickNumber() + 1
		for rt.TickNumber() < target {
			time.Sleep(50 * time.Microsecond)
		}
	}
	b.StopTimer()
	if rec.Count() == 0 {
		b.Error("expected published snapshots")
	}
}

func BenchmarkControllerAdvance(b *testing.B) {
	ctl := MustCompile(GenTimelineConfig(20, time.Second))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctl.Advance(16 * time.Millisecond)
	}
}
