package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/mansurdincer/loomsched/internal/domain"
)

func testConfig() domain.RunConfig {
	cfg := domain.DefaultRunConfig()
	return cfg
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Scenario 1 (§8): trivial single order, no split.
func TestSplit_Trivial(t *testing.T) {
	s := NewSplitter(testConfig())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	order := domain.RawOrder{
		OrderID:        "O1",
		LineID:         "L1",
		QuantityMeters: 1000,
		PickDensity:    15,
		DueAt:          now.Add(30 * 24 * time.Hour),
	}
	speed := s.MachineSpeed(15)
	if !almostEqual(speed, 15.3, 0.01) {
		t.Fatalf("speed = %v, want 15.3", speed)
	}
	items, err := s.Split(order, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
	if !almostEqual(items[0].DurationHours, 65.36, 0.05) {
		t.Fatalf("duration = %v, want ~65.36", items[0].DurationHours)
	}
}

// Scenario 2 (§8): unsplittable order emitted unsplit.
func TestSplit_Unsplittable(t *testing.T) {
	s := NewSplitter(testConfig())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	order := domain.RawOrder{
		OrderID:        "O2",
		LineID:         "L1",
		QuantityMeters: 400,
		PickDensity:    15,
		DueAt:          now.Add(1 * time.Hour),
	}
	items, err := s.Split(order, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 unsplit item, got %d", len(items))
	}
	if items[0].QuantityMeters != 400 {
		t.Fatalf("quantity changed: %v", items[0].QuantityMeters)
	}
}

// Scenario 3 (§8): clean split into MAX_SPLITS items of MIN_SPLIT meters.
func TestSplit_Clean(t *testing.T) {
	s := NewSplitter(testConfig())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	order := domain.RawOrder{
		OrderID:        "O3",
		LineID:         "L1",
		QuantityMeters: 5000,
		PickDensity:    15,
		DueAt:          now.Add(10 * time.Hour),
	}
	items, err := s.Split(order, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 10 {
		t.Fatalf("want 10 items, got %d", len(items))
	}
	var total float64
	for i, it := range items {
		if !almostEqual(it.QuantityMeters, 500, 0.1) {
			t.Fatalf("item %d quantity = %v, want ~500", i, it.QuantityMeters)
		}
		total += it.QuantityMeters
	}
	if !almostEqual(total, order.QuantityMeters, 1e-6*order.QuantityMeters) {
		t.Fatalf("conservation violated: total = %v, want %v", total, order.QuantityMeters)
	}
}

// Conservation of quantity, universal property (§8).
func TestSplit_ConservationOfQuantity(t *testing.T) {
	s := NewSplitter(testConfig())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []domain.RawOrder{
		{OrderID: "A", LineID: "1", QuantityMeters: 12345, PickDensity: 10, DueAt: now.Add(2 * time.Hour)},
		{OrderID: "B", LineID: "1", QuantityMeters: 600, PickDensity: 0, DueAt: now.Add(24 * time.Hour)},
	}
	for _, o := range orders {
		items, err := s.Split(o, now)
		if err != nil {
			t.Fatal(err)
		}
		var total float64
		for _, it := range items {
			if it.QuantityMeters < 0 {
				t.Fatalf("negative quantity")
			}
			total += it.QuantityMeters
		}
		if !almostEqual(total, o.QuantityMeters, 1e-6*o.QuantityMeters) {
			t.Fatalf("order %s: total %v != %v", o.OrderID, total, o.QuantityMeters)
		}
		if len(items) > s.cfg.MaxSplits {
			t.Fatalf("order %s: split into %d > MaxSplits", o.OrderID, len(items))
		}
	}
}

func TestMachineSpeed_DefaultWhenUnknown(t *testing.T) {
	s := NewSplitter(testConfig())
	if got := s.MachineSpeed(0); got != DefaultSpeedMetersPerHour {
		t.Fatalf("got %v, want default %v", got, DefaultSpeedMetersPerHour)
	}
	if got := s.MachineSpeed(-5); got != DefaultSpeedMetersPerHour {
		t.Fatalf("got %v, want default %v", got, DefaultSpeedMetersPerHour)
	}
}
