// Package stats assembles the Statistics Recorder output (§4.7): the
// append-only generation log produced by the search driver plus the
// setup tallies and machine loads produced by the result analyzer.
package stats

import "github.com/mansurdincer/loomsched/internal/domain"

// Build combines a search driver's per-generation log with a result
// analyzer's setup tally and machine loads into the aggregate Stats
// object served and persisted alongside a run (§6 "Engine outputs").
func Build(generations []domain.GenerationStat, tally domain.SetupTally, loads []domain.MachineLoad) domain.Stats {
	return domain.Stats{
		Generations:  generations,
		TypeChanges:  tally,
		MachineLoads: loads,
	}
}
