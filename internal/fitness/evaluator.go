// Package fitness implements the Fitness Evaluator (§4.4): it runs the
// greedy assigner on a permutation and reduces the resulting schedule to
// the (T, B, C) triple the search driver optimizes.
package fitness

import (
	"github.com/mansurdincer/loomsched/internal/assign"
	"github.com/mansurdincer/loomsched/internal/domain"
)

// Evaluator scores permutations of a fixed work-item set.
type Evaluator struct {
	items    []domain.WorkItem
	assigner *assign.Assigner
}

// New binds an Evaluator to the work-item pool and machine count it will
// score permutations against.
func New(items []domain.WorkItem, machines int) *Evaluator {
	return &Evaluator{items: items, assigner: assign.New(machines)}
}

// Evaluate assigns perm (a permutation of indices into the Evaluator's
// item pool) and computes makespan, balance+parallelism penalty, and
// normalized setup-change count, per §4.4.
func (e *Evaluator) Evaluate(perm []int) domain.Fitness {
	ordered := make([]domain.WorkItem, len(perm))
	for i, idx := range perm {
		ordered[i] = e.items[idx]
	}
	result := e.assigner.Assign(ordered)
	return scoreResult(result, len(e.items))
}

func scoreResult(result assign.Result, n int) domain.Fitness {
	times := make([]float64, len(result.Machines))
	for i, m := range result.Machines {
		times[i] = m.Time
	}

	makespan := 0.0
	for _, t := range times {
		if t > makespan {
			makespan = t
		}
	}

	avg := 0.0
	for _, t := range times {
		avg += t
	}
	avg /= float64(len(times))

	variance := 0.0
	for _, t := range times {
		d := t - avg
		variance += d * d
	}
	variance /= float64(len(times))

	empty := 0
	overloaded := 0
	for _, t := range times {
		if t == 0 {
			empty++
		}
		if avg > 0 && t > 1.1*avg {
			overloaded++
		}
	}

	// Every adjacency incurs a non-zero setup (§4.4), so the change count
	// is simply the number of adjacent pairs across all machines.
	parallelPenalties := 0
	changes := 0
	for _, m := range result.Machines {
		for i := 1; i < len(m.Items); i++ {
			prev, cur := m.Items[i-1], m.Items[i]
			if prev.OrderID == cur.OrderID {
				parallelPenalties++
			}
			changes++
		}
	}

	var balance float64
	if avg > 0 {
		balance = (variance/(avg*avg))*(1+2*float64(empty)+float64(overloaded)) + 2*float64(parallelPenalties)/float64(n)
	}

	return domain.Fitness{
		Makespan: makespan,
		Balance:  balance,
		Changes:  float64(changes) / float64(n),
	}
}
