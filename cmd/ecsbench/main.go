// Command ecsbench stress-tests the archetype store: spawn a pile of
// entities across a handful of archetypes, then hammer Sync for a
// fixed duration while sampling per-sync latency and memory growth.
//
// Profiling:
//
//	go build ./cmd/ecsbench
//	./ecsbench -cpuprofile
//	go tool pprof -http=":8000" ./ecsbench cpu.pprof
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/plus3/archecs/ecs"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }
type health struct{ HP int }

func main() {
	duration := flag.Duration("duration", 5*time.Second, "total duration to run the sync loop for")
	entityCount := flag.Int("entities", 20000, "initial number of entities to spawn")
	parentCount := flag.Int("parents", 100, "number of parent entities don't-fragment children attach to")
	cpuProfile := flag.Bool("cpuprofile", false, "wrap the run in a CPU profile (writes cpu.pprof)")
	flag.Parse()

	log.Println("starting archetype ECS stress test...")

	if *cpuProfile {
		p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		defer p.Stop()
	}

	w := ecs.New()
	posId, err := w.Component(ecs.ComponentOptions{Name: "Position"})
	must(err)
	velId, err := w.Component(ecs.ComponentOptions{Name: "Velocity"})
	must(err)
	hpId, err := w.Component(ecs.ComponentOptions{Name: "Health"})
	must(err)
	childOfId, err := w.Component(ecs.ComponentOptions{Name: "ChildOf", DontFragment: true})
	must(err)

	parents := make([]ecs.Id, *parentCount)
	for i := range parents {
		parents[i] = w.Spawn()
	}
	must(w.Sync())

	log.Printf("populating %d entities across a handful of archetypes...\n", *entityCount)
	for i := 0; i < *entityCount; i++ {
		e := w.Spawn()
		must(w.Set(e, posId, position{X: rand.Float64() * 100, Y: rand.Float64() * 100}))
		if i%2 == 0 {
			must(w.Set(e, velId, velocity{X: rand.Float64() - 0.5, Y: rand.Float64() - 0.5}))
		}
		if i%5 == 0 {
			must(w.Set(e, hpId, health{HP: 100}))
		}
		rel, err := w.Relation(childOfId, parents[i%len(parents)])
		must(err)
		must(w.Set(e, rel, struct{}{}))
	}
	must(w.Sync())
	log.Println("population complete.")

	moving := w.CreateQuery([]ecs.Id{posId, velId}, nil)
	defer moving.Release()

	report := &Report{
		Duration: *duration,
		Entities: *entityCount,
		SyncTime: Stats{Samples: make([]time.Duration, 0)},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("running sync loop for %s...\n", *duration)
	deadline := time.Now().Add(*duration)
	startTime := time.Now()
	var totalSyncs int64

	for time.Now().Before(deadline) {
		_ = moving.ForEach(func(e ecs.Id, values []any) bool {
			pos := values[0].(position)
			vel := values[1].(velocity)
			pos.X += vel.X
			pos.Y += vel.Y
			must(w.Set(e, posId, pos))
			return true
		})

		syncStart := time.Now()
		must(w.Sync())
		report.SyncTime.Samples = append(report.SyncTime.Samples, time.Since(syncStart))
		totalSyncs++
	}

	report.TotalTime = time.Since(startTime)
	report.TotalSyncs = totalSyncs
	report.SyncTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("stress test finished.")

	fmt.Println("\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
