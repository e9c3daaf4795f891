package fitness

import (
	"testing"

	"github.com/mansurdincer/loomsched/internal/domain"
)

func vp(s string) *string { return &s }

func TestEvaluate_SingleItemSingleMachine(t *testing.T) {
	items := []domain.WorkItem{
		{ID: "A", OrderID: "A", DurationHours: 5, VariantCode: vp("x")},
	}
	e := New(items, 2)
	f := e.Evaluate([]int{0})

	if f.Makespan != 8 { // 3h TEAM setup + 5h duration
		t.Fatalf("makespan = %v, want 8", f.Makespan)
	}
	if f.Changes != 0 {
		t.Fatalf("changes = %v, want 0 (no adjacency yet)", f.Changes)
	}
}

func TestEvaluate_MakespanIsMaxMachineTime(t *testing.T) {
	items := []domain.WorkItem{
		{ID: "A", OrderID: "A", DurationHours: 10, VariantCode: vp("x")},
		{ID: "B", OrderID: "B", DurationHours: 1, VariantCode: vp("y")},
	}
	e := New(items, 2)
	f := e.Evaluate([]int{0, 1})
	if f.Makespan < 10 {
		t.Fatalf("makespan = %v, want >= 10", f.Makespan)
	}
}

func TestEvaluate_DeterministicForSamePermutation(t *testing.T) {
	items := []domain.WorkItem{
		{ID: "A", OrderID: "A", DurationHours: 3, VariantCode: vp("x")},
		{ID: "B", OrderID: "B", DurationHours: 4, VariantCode: vp("y")},
		{ID: "C", OrderID: "C", DurationHours: 2, VariantCode: vp("x")},
	}
	e := New(items, 3)
	perm := []int{2, 0, 1}
	f1 := e.Evaluate(perm)
	f2 := e.Evaluate(perm)
	if f1 != f2 {
		t.Fatalf("evaluation not deterministic: %+v != %+v", f1, f2)
	}
}
