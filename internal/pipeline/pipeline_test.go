package pipeline

import (
	"testing"
	"time"

	"github.com/mansurdincer/loomsched/internal/domain"
)

func sampleOrder(id string, dueIn time.Duration) domain.RawOrder {
	return domain.RawOrder{
		OrderID:        id,
		LineID:         "1",
		QuantityMeters: 1000,
		PickDensity:    15,
		TypeName:       "T1",
		DueAt:          time.Now().Add(dueIn),
	}
}

func TestRunFromOrders_NoOrdersIsSuccessNotError(t *testing.T) {
	cfg := domain.DefaultRunConfig()
	result, err := RunFromOrders(nil, cfg)
	if err != nil {
		t.Fatalf("got error %v, want nil", err)
	}
	if len(result.Schedules) != 0 {
		t.Fatalf("got %d schedules, want 0", len(result.Schedules))
	}
	if len(result.Stats.Generations) != 0 {
		t.Fatalf("got %d generation stats, want 0 (search must not run)", len(result.Stats.Generations))
	}
	if result.RunID == "" {
		t.Fatal("expected a run id even for an empty run")
	}
}

func TestRunFromOrders_SingleItemBypassesSearch(t *testing.T) {
	cfg := domain.DefaultRunConfig()
	cfg.Machines = 3

	result, err := RunFromOrders([]domain.RawOrder{sampleOrder("O1", 30*24*time.Hour)}, cfg)
	if err != nil {
		t.Fatalf("got error %v, want nil", err)
	}
	if len(result.Stats.Generations) != 0 {
		t.Fatalf("got %d generation stats, want 0 (GA must be bypassed for N=1)", len(result.Stats.Generations))
	}

	total := 0
	for _, sched := range result.Schedules {
		total += len(sched.Items)
	}
	if total != 1 {
		t.Fatalf("got %d scheduled items across all machines, want 1", total)
	}
}

func TestRunFromOrders_PopulationLargerThanItemCountStillRunsSearch(t *testing.T) {
	cfg := domain.DefaultRunConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 3
	cfg.TournamentSize = 3
	cfg.Machines = 2

	orders := make([]domain.RawOrder, 5)
	for i := range orders {
		orders[i] = sampleOrder(string(rune('A'+i)), 30*24*time.Hour)
	}

	result, err := RunFromOrders(orders, cfg)
	if err != nil {
		t.Fatalf("N < populationSize must not be treated as a degenerate search, got error: %v", err)
	}
	if len(result.Stats.Generations) != cfg.Generations {
		t.Fatalf("got %d generation stats, want %d", len(result.Stats.Generations), cfg.Generations)
	}

	total := 0
	for _, sched := range result.Schedules {
		total += len(sched.Items)
	}
	if total != len(orders) {
		t.Fatalf("got %d scheduled items, want %d", total, len(orders))
	}
}
