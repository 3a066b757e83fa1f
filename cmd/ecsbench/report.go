package main

import (
	"io"
	"runtime"
	"text/template"
	"time"
)

// Report summarizes one stress run's timing and memory growth: sync
// latency distribution alongside before/after runtime.MemStats.
type Report struct {
	Duration time.Duration
	Entities int

	TotalSyncs    int64
	TotalTime     time.Duration
	SyncTime      Stats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# archetype ECS stress test report

## Test configuration
- **Run duration:** {{.Duration}}
- **Initial entities:** {{.Entities}}

## Performance results
- **Total syncs:** {{.TotalSyncs}}
- **Total test time:** {{.TotalTime}}
- **Sync time:**
  - **Avg:** {{.SyncTime.Avg}}
  - **Min:** {{.SyncTime.Min}}
  - **Max:** {{.SyncTime.Max}}

## Memory usage (raw bytes)
- Heap Alloc:  {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc: {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:      {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 { return int64(a) - int64(b) },
		"usub": func(a, b uint32) uint32 { return a - b },
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
