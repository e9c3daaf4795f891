// Package assign implements the Greedy Machine Assigner (§4.3): the
// deterministic heuristic that places a permutation of work items onto a
// fixed-size fleet of looms.
package assign

import (
	"math"

	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/setup"
)

// blockWindow is how many of a machine's most recent items are checked
// for a same-order collision (§4.3 step 2).
const blockWindow = 3

// Assignment is the running state of one machine during a greedy pass.
type Assignment struct {
	Items []domain.WorkItem
	Time  float64 // committed hours, production + setup
}

// Result is the outcome of assigning an entire permutation.
type Result struct {
	Machines []Assignment
}

// Assigner runs the greedy heuristic over a fixed number of machines.
type Assigner struct {
	machines int
}

// New returns an Assigner for the given fleet size.
func New(machines int) *Assigner {
	return &Assigner{machines: machines}
}

// Assign places items (already ordered by a permutation) onto machines,
// following §4.3 steps 1-5 for each item in turn.
func (a *Assigner) Assign(items []domain.WorkItem) Result {
	machines := make([]Assignment, a.machines)
	for _, item := range items {
		best := a.findBestMachine(machines, item)
		m := &machines[best]
		if len(m.Items) > 0 {
			prev := m.Items[len(m.Items)-1]
			_, minutes := setup.Classify(&prev, &item)
			m.Time += minutes / 60
		} else {
			_, minutes := setup.Classify(nil, &item)
			m.Time += minutes / 60
		}
		m.Items = append(m.Items, item)
		m.Time += item.DurationHours
	}
	return Result{Machines: machines}
}

func (a *Assigner) findBestMachine(machines []Assignment, c domain.WorkItem) int {
	times := make([]float64, len(machines))
	for i, m := range machines {
		times[i] = m.Time
	}
	avg, max, min := stats(times)

	blocked := blockedMachines(machines, c, a.machines)

	// Step 3: imbalance bypass.
	if max-min > 0.3*avg {
		if idx, ok := leastLoadedUnblocked(times, blocked); ok {
			return idx
		}
	}

	// Step 4: compatibility preference.
	if idx, ok := compatibilityPick(machines, times, blocked, avg, max, c); ok {
		return idx
	}

	// Step 5: fallback score, restricted to non-blocked unless all blocked.
	candidates := blocked
	if len(blocked) == a.machines {
		candidates = map[int]bool{}
	}
	return fallbackPick(machines, times, candidates, avg, max, c)
}

func stats(times []float64) (avg, max, min float64) {
	if len(times) == 0 {
		return 0, 0, 0
	}
	sum := 0.0
	max = times[0]
	min = times[0]
	for _, t := range times {
		sum += t
		if t > max {
			max = t
		}
		if t < min {
			min = t
		}
	}
	return sum / float64(len(times)), max, min
}

func blockedMachines(machines []Assignment, c domain.WorkItem, n int) map[int]bool {
	blocked := make(map[int]bool, n)
	for i, m := range machines {
		start := len(m.Items) - blockWindow
		if start < 0 {
			start = 0
		}
		for _, prev := range m.Items[start:] {
			if prev.OrderID == c.OrderID {
				blocked[i] = true
				break
			}
		}
	}
	return blocked
}

func leastLoadedUnblocked(times []float64, blocked map[int]bool) (int, bool) {
	best := -1
	bestTime := 0.0
	for i, t := range times {
		if blocked[i] {
			continue
		}
		if best == -1 || t < bestTime {
			best = i
			bestTime = t
		}
	}
	return best, best != -1
}

func compatibilityPick(machines []Assignment, times []float64, blocked map[int]bool, avg, max float64, c domain.WorkItem) (int, bool) {
	best := -1
	bestScore := 0.0
	found := false
	for i, m := range machines {
		if blocked[i] || len(m.Items) == 0 {
			continue
		}
		if times[i] >= 1.2*avg {
			continue
		}
		last := m.Items[len(m.Items)-1]
		score := balanceScore(times[i], avg, max)

		variantMatch := c.VariantCode != nil && last.VariantCode != nil && *c.VariantCode == *last.VariantCode
		ulakMatch := c.UlakCode != nil && last.UlakCode != nil && *c.UlakCode == *last.UlakCode

		switch {
		case variantMatch:
			if !found || score < bestScore {
				best, bestScore, found = i, score, true
			}
		case ulakMatch:
			if !found || score < bestScore*1.2 {
				best, bestScore, found = i, score, true
			}
		}
	}
	return best, found
}

func fallbackPick(machines []Assignment, times []float64, blocked map[int]bool, avg, max float64, c domain.WorkItem) int {
	best := 0
	bestScore := 0.0
	found := false
	for i, m := range machines {
		if blocked[i] {
			continue
		}
		balance := balanceScore(times[i], avg, max)

		changePenalty := 0.0
		if len(m.Items) > 0 {
			last := m.Items[len(m.Items)-1]
			kind, _ := setup.Classify(&last, &c)
			if kind == domain.SetupTeam {
				changePenalty = 0.8
			}
		}

		overload := 0.0
		if times[i] > 1.1*avg {
			overload = (times[i] - 1.1*avg) / avg
		}
		underload := 0.0
		if times[i] < 0.9*avg {
			underload = -0.3
		}

		score := 0.6*balance + 0.4*changePenalty + overload + underload
		if !found || score < bestScore {
			best, bestScore, found = i, score, true
		}
	}
	return best
}

func balanceScore(time, avg, max float64) float64 {
	return math.Abs(time-avg) / (max + 1)
}
