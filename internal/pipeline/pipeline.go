// Package pipeline assembles the ingest -> split -> evolve -> analyze
// stages into a single run, shared by the CLI and the HTTP API so neither
// has to depend on the other.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mansurdincer/loomsched/internal/analyzer"
	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/evo"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
	"github.com/mansurdincer/loomsched/internal/ingest"
	"github.com/mansurdincer/loomsched/internal/stats"
)

// RunFromOrders splits, schedules and analyzes a batch of already-read raw
// orders, returning a fully assembled RunResult ready to persist or serve.
//
// Zero orders (or zero work items after splitting) is not an error: it
// produces an empty schedule with zero-valued stats and never runs the
// search (§7 "Empty input"). A single work item bypasses the search
// entirely and is scheduled directly (§7 "Search degeneracy").
func RunFromOrders(orders []domain.RawOrder, cfg domain.RunConfig) (domain.RunResult, error) {
	if len(orders) == 0 {
		return emptyRun(cfg), nil
	}

	splitter := ingest.NewSplitter(cfg)
	items, err := splitter.SplitAll(orders, time.Now())
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("split orders: %w", err)
	}
	if len(items) == 0 {
		return emptyRun(cfg), nil
	}

	var perm []int
	var generations []domain.GenerationStat
	if len(items) == 1 {
		perm = []int{0}
	} else {
		engine := evo.New(items, cfg)
		best, gens := engine.Run()
		perm, generations = best.Perm, gens
	}

	schedules, tally, loads := analyzer.Analyze(items, perm, cfg.Machines)
	observability.RunMakespanHours.Set(makespan(loads))
	observability.RunWorkItems.Set(float64(len(items)))

	return domain.RunResult{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Schedules: schedules,
		Stats:     stats.Build(generations, tally, loads),
	}, nil
}

func makespan(loads []domain.MachineLoad) float64 {
	max := 0.0
	for _, l := range loads {
		if l.TotalHours > max {
			max = l.TotalHours
		}
	}
	return max
}

func emptyRun(cfg domain.RunConfig) domain.RunResult {
	return domain.RunResult{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Schedules: []domain.MachineSchedule{},
		Stats:     stats.Build(nil, domain.SetupTally{}, nil),
	}
}
