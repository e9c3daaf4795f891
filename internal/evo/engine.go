// Package evo implements the Evolutionary Search Driver (§4.5): a
// per-run genetic algorithm over permutations of work-item indices,
// using partially-matched crossover, shuffle-indexes mutation, and
// tournament selection.
package evo

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/fitness"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
)

// Engine runs one evolutionary search over a fixed work-item pool. It
// holds no package-level state; every run gets its own Engine and its
// own seeded RNG, so concurrent runs never interfere with each other.
type Engine struct {
	cfg       domain.RunConfig
	evaluator *fitness.Evaluator
	n         int
	rng       *rand.Rand
}

// New creates an Engine for the given work-item pool and configuration.
// When cfg.Seed is zero the engine still seeds deterministically from it
// (the zero seed is a valid, reproducible seed per §4.5).
func New(items []domain.WorkItem, cfg domain.RunConfig) *Engine {
	return &Engine{
		cfg:       cfg,
		evaluator: fitness.New(items, cfg.Machines),
		n:         len(items),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run executes the full generational search (§4.5) and returns the best
// individual found along with per-generation statistics.
func (e *Engine) Run() (domain.Individual, []domain.GenerationStat) {
	if e.n == 0 {
		return domain.Individual{}, nil
	}

	population := e.initPopulation()
	e.evaluateAll(population)

	best := bestOf(population, e.cfg.Weights)
	stats := make([]domain.GenerationStat, 0, e.cfg.Generations)

	for gen := 0; gen < e.cfg.Generations; gen++ {
		start := time.Now()

		offspring := e.reproduce(population)
		e.evaluateAll(offspring)
		population = offspring

		genBest := bestOf(population, e.cfg.Weights)
		if genBest.Aggregate(e.cfg.Weights) < best.Aggregate(e.cfg.Weights) {
			best = genBest
		}

		elapsed := time.Since(start).Seconds()
		stats = append(stats, domain.GenerationStat{
			Generation:  gen,
			Best:        best.Aggregate(e.cfg.Weights),
			Avg:         averageAggregate(population, e.cfg.Weights),
			WallSeconds: elapsed,
		})
		observability.GenerationDuration.Observe(elapsed)
		observability.GenerationBestAggregate.Set(best.Aggregate(e.cfg.Weights))
	}

	return best, stats
}

// initPopulation creates populationSize random permutations of 0..n-1,
// drawn from the Engine's seeded RNG for reproducibility.
func (e *Engine) initPopulation() []domain.Individual {
	pop := make([]domain.Individual, e.cfg.PopulationSize)
	for i := range pop {
		perm := e.rng.Perm(e.n)
		pop[i] = domain.Individual{Perm: perm}
	}
	return pop
}

// evaluateAll scores every individual's fitness. Evaluation is run
// concurrently, but each worker writes into its own pre-assigned slot so
// the result is independent of goroutine scheduling order (§4.5
// determinism).
func (e *Engine) evaluateAll(pop []domain.Individual) {
	var wg sync.WaitGroup
	for i := range pop {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pop[i].Fitness = e.evaluator.Evaluate(pop[i].Perm)
		}(i)
	}
	wg.Wait()
}

// reproduce builds the next generation: tournament-selected parents,
// PMX-uniform crossover, shuffle-indexes mutation (§4.5 step 1).
func (e *Engine) reproduce(population []domain.Individual) []domain.Individual {
	offspring := make([]domain.Individual, len(population))
	for i := 0; i < len(population); i += 2 {
		p1 := e.tournamentSelect(population)
		p2 := e.tournamentSelect(population)

		c1, c2 := p1.Perm, p2.Perm
		if e.rng.Float64() < e.cfg.Cxpb {
			c1, c2 = e.pmxCrossover(p1.Perm, p2.Perm)
		} else {
			c1 = append([]int(nil), p1.Perm...)
			c2 = append([]int(nil), p2.Perm...)
		}

		if e.rng.Float64() < e.cfg.Mutpb {
			e.shuffleMutate(c1)
		}
		offspring[i] = domain.Individual{Perm: c1}

		if i+1 < len(population) {
			if e.rng.Float64() < e.cfg.Mutpb {
				e.shuffleMutate(c2)
			}
			offspring[i+1] = domain.Individual{Perm: c2}
		}
	}
	return offspring
}

// tournamentSelect draws tournamentSize individuals uniformly with
// replacement and returns the one with the lowest aggregate fitness
// (§4.5 "Selection for subsequent mating").
func (e *Engine) tournamentSelect(population []domain.Individual) domain.Individual {
	best := population[e.rng.Intn(len(population))]
	for i := 1; i < e.cfg.TournamentSize; i++ {
		challenger := population[e.rng.Intn(len(population))]
		if challenger.Aggregate(e.cfg.Weights) < best.Aggregate(e.cfg.Weights) {
			best = challenger
		}
	}
	return best
}

// pmxCrossover implements uniform partially-matched crossover: swap
// values at each position with probability indpbCx, then repair so both
// children remain valid permutations.
func (e *Engine) pmxCrossover(p1, p2 []int) ([]int, []int) {
	n := len(p1)
	c1 := append([]int(nil), p1...)
	c2 := append([]int(nil), p2...)

	pos1 := make([]int, n) // value -> index, within c1
	pos2 := make([]int, n)
	for i := 0; i < n; i++ {
		pos1[c1[i]] = i
		pos2[c2[i]] = i
	}

	for i := 0; i < n; i++ {
		if e.rng.Float64() >= e.cfg.IndpbCx {
			continue
		}
		v1, v2 := c1[i], c2[i]
		if v1 == v2 {
			continue
		}
		j1, j2 := pos1[v2], pos2[v1]

		c1[i], c1[j1] = c1[j1], c1[i]
		pos1[v1], pos1[v2] = j1, i

		c2[i], c2[j2] = c2[j2], c2[i]
		pos2[v2], pos2[v1] = j2, i
	}
	return c1, c2
}

// shuffleMutate applies DEAP-style shuffle-indexes mutation in place:
// for each position, with probability indpbMut swap it with a uniformly
// random other position.
func (e *Engine) shuffleMutate(perm []int) {
	n := len(perm)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		if e.rng.Float64() >= e.cfg.IndpbMut {
			continue
		}
		j := e.rng.Intn(n - 1)
		if j >= i {
			j++
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
}

func bestOf(pop []domain.Individual, weights domain.Weights) domain.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Aggregate(weights) < best.Aggregate(weights) {
			best = ind
		}
	}
	return best
}

func averageAggregate(pop []domain.Individual, weights domain.Weights) float64 {
	sum := 0.0
	for _, ind := range pop {
		sum += ind.Aggregate(weights)
	}
	return sum / float64(len(pop))
}
