// Package analyzer implements the Result Analyzer (§4.6): it re-runs the
// greedy assigner on the search driver's best permutation to produce the
// final schedules and their aggregate statistics.
package analyzer

import (
	"github.com/mansurdincer/loomsched/internal/assign"
	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
	"github.com/mansurdincer/loomsched/internal/setup"
)

// Analyze re-runs the assigner on perm (the search driver's best
// individual) against items and machines, producing per-machine ordered
// schedules with cumulative start times and the aggregate counters named
// in §4.6/§4.7.
func Analyze(items []domain.WorkItem, perm []int, machines int) ([]domain.MachineSchedule, domain.SetupTally, []domain.MachineLoad) {
	ordered := make([]domain.WorkItem, len(perm))
	for i, idx := range perm {
		ordered[i] = items[idx]
	}

	result := assign.New(machines).Assign(ordered)

	schedules := make([]domain.MachineSchedule, len(result.Machines))
	loads := make([]domain.MachineLoad, len(result.Machines))
	var tally domain.SetupTally

	for mi, m := range result.Machines {
		sched := domain.MachineSchedule{MachineID: mi}
		cursor := 0.0
		load := domain.MachineLoad{MachineID: mi}

		var prev *domain.WorkItem
		for _, it := range m.Items {
			kind, minutes := setup.Classify(prev, &it)
			setupHours := minutes / 60

			sched.Items = append(sched.Items, domain.ScheduledItem{
				ItemID:         it.ID,
				OrderID:        it.OrderID,
				LineID:         it.LineID,
				TypeName:       it.TypeName,
				VariantCode:    it.VariantCode,
				UlakCode:       it.UlakCode,
				QuantityMeters: it.QuantityMeters,
				PickDensity:    it.PickDensity,
				DueAt:          it.DueAt,
				StartHour:      cursor + setupHours,
				DurationHours:  it.DurationHours,
				SetupKind:      kind,
				SetupMinutes:   minutes,
			})
			cursor += setupHours + it.DurationHours

			load.ItemCount++
			if prev != nil {
				load.SetupCount++
			}
			tallyKind(&tally, kind)

			cur := it
			prev = &cur
		}

		load.TotalHours = cursor
		schedules[mi] = sched
		loads[mi] = load
	}

	return schedules, tally, loads
}

func tallyKind(t *domain.SetupTally, kind domain.SetupKind) {
	switch kind {
	case domain.SetupVariant:
		t.Variant++
		observability.SetupChangesTotal.WithLabelValues("variant").Inc()
	case domain.SetupUlak:
		t.Ulak++
		observability.SetupChangesTotal.WithLabelValues("ulak").Inc()
	default:
		t.Team++
		observability.SetupChangesTotal.WithLabelValues("team").Inc()
	}
}
