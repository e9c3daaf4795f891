// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// ─── Raw Input ──────────────────────────────────────────────────────────────

// RawOrder is a single row from the external order source, after the
// reader has normalized blank-equivalent code tokens (§6) but before any
// splitting or speed computation.
type RawOrder struct {
	OrderID        string    `json:"order_id"`
	LineID         string    `json:"line_id"`
	QuantityMeters float64   `json:"quantity_meters"`
	DueAt          time.Time `json:"due_at"`
	PickDensity    float64   `json:"pick_density"` // picks/cm; 0 = unknown
	TypeName       string    `json:"type_name"`
	VariantCode    *string   `json:"variant_code,omitempty"`
	UlakCode       *string   `json:"ulak_code,omitempty"`
}

// ─── Work Item ──────────────────────────────────────────────────────────────

// WorkItem is the engine's immutable scheduling unit, emitted by the
// Splitter from one RawOrder (possibly split into several).
type WorkItem struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	LineID         string    `json:"line_id"`
	QuantityMeters float64   `json:"quantity_meters"`
	DurationHours  float64   `json:"duration_hours"`
	DueAt          time.Time `json:"due_at"`
	TypeName       string    `json:"type_name"`
	VariantCode    *string   `json:"variant_code,omitempty"`
	UlakCode       *string   `json:"ulak_code,omitempty"`
	PickDensity    *float64  `json:"pick_density,omitempty"`
}

// SameOrder reports whether two items were split from the same raw order.
func (w WorkItem) SameOrder(other WorkItem) bool {
	return w.OrderID == other.OrderID
}

// ─── Setup-Change Kind ──────────────────────────────────────────────────────

// SetupKind is a tagged variant for the three setup-change categories.
type SetupKind int

const (
	// SetupVariant is a 30-minute variant-to-variant changeover.
	SetupVariant SetupKind = iota
	// SetupUlak is a 120-minute ulak-compatible changeover.
	SetupUlak
	// SetupTeam is a 180-minute full team changeover (also the first
	// setup on any machine).
	SetupTeam
)

// Minutes returns the setup duration in minutes for this kind.
func (k SetupKind) Minutes() float64 {
	switch k {
	case SetupVariant:
		return 30
	case SetupUlak:
		return 120
	default:
		return 180
	}
}

// String implements fmt.Stringer.
func (k SetupKind) String() string {
	switch k {
	case SetupVariant:
		return "VARIANT"
	case SetupUlak:
		return "ULAK"
	default:
		return "TEAM"
	}
}

// ─── Schedule Output ────────────────────────────────────────────────────────

// ScheduledItem is one entry in a machine's ordered job list (§6 "Engine
// outputs").
type ScheduledItem struct {
	ItemID         string    `json:"item_id"`
	OrderID        string    `json:"order_id"`
	LineID         string    `json:"line_id"`
	TypeName       string    `json:"type_name"`
	VariantCode    *string   `json:"variant_code,omitempty"`
	UlakCode       *string   `json:"ulak_code,omitempty"`
	QuantityMeters float64   `json:"quantity_meters"`
	PickDensity    *float64  `json:"pick_density,omitempty"`
	DueAt          time.Time `json:"due_at"`
	StartHour      float64   `json:"start_hour"`
	DurationHours  float64   `json:"duration_hours"`
	SetupKind      SetupKind `json:"setup_kind"`
	SetupMinutes   float64   `json:"setup_minutes"`
}

// MachineSchedule is the ordered list of items one machine will run.
type MachineSchedule struct {
	MachineID int             `json:"machine_id"`
	Items     []ScheduledItem `json:"items"`
}

// ─── Fitness ────────────────────────────────────────────────────────────────

// Fitness is the triple (makespan, balance+parallel penalty, normalized
// change count) attached to an Individual, per §4.4.
type Fitness struct {
	Makespan float64 `json:"makespan"`
	Balance  float64 `json:"balance"`
	Changes  float64 `json:"changes"`
}

// Aggregate computes the weighted scalar objective minimized by selection:
// default weights (-2,-3,-10) make this equal 2*Makespan + 3*Balance +
// 10*Changes, so the lowest Aggregate wins.
func (f Fitness) Aggregate(weights Weights) float64 {
	return -weights.Makespan*f.Makespan - weights.Balance*f.Balance - weights.Changes*f.Changes
}

// Weights holds the fitness objective weights from §6 (default (-2,-3,-10)).
type Weights struct {
	Makespan float64 `toml:"makespan"`
	Balance  float64 `toml:"balance"`
	Changes  float64 `toml:"changes"`
}

// DefaultWeights returns the spec's default objective weights.
func DefaultWeights() Weights {
	return Weights{Makespan: -2, Balance: -3, Changes: -10}
}

// ─── Individual ─────────────────────────────────────────────────────────────

// Individual is a permutation of work-item indices together with its
// evaluated fitness.
type Individual struct {
	Perm    []int
	Fitness Fitness
}

// Aggregate is a convenience wrapper around Fitness.Aggregate.
func (ind Individual) Aggregate(weights Weights) float64 {
	return ind.Fitness.Aggregate(weights)
}

// ─── Statistics ─────────────────────────────────────────────────────────────

// GenerationStat is one generation's recorded statistics (§4.7a).
type GenerationStat struct {
	Generation  int     `json:"generation"`
	Best        float64 `json:"best"`
	Avg         float64 `json:"avg"`
	WallSeconds float64 `json:"wall_seconds"`
}

// SetupTally counts setup changes by kind (§4.7b).
type SetupTally struct {
	Variant int `json:"variant"`
	Ulak    int `json:"ulak"`
	Team    int `json:"team"`
}

// MachineLoad is the per-machine aggregate recorded by the Result
// Analyzer (§4.6, §4.7c).
type MachineLoad struct {
	MachineID  int     `json:"machine_id"`
	TotalHours float64 `json:"total_hours"`
	ItemCount  int     `json:"item_count"`
	SetupCount int     `json:"setup_count"`
}

// Stats is the full aggregate statistics object served/persisted alongside
// a run's schedule (§6).
type Stats struct {
	Generations  []GenerationStat `json:"generations"`
	TypeChanges  SetupTally       `json:"type_changes"`
	MachineLoads []MachineLoad    `json:"machine_loads"`
}

// ─── Run ────────────────────────────────────────────────────────────────────

// RunResult is the persisted/served output of one end-to-end engine run.
type RunResult struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Config    RunConfig         `json:"config"`
	Schedules []MachineSchedule `json:"schedules"`
	Stats     Stats             `json:"stats"`
}

// ─── Run Configuration ──────────────────────────────────────────────────────

// RunConfig holds every tunable named in §6, overridable from a TOML file
// and from CLI flags.
type RunConfig struct {
	PopulationSize int     `toml:"population_size"`
	Generations    int     `toml:"generations"`
	Cxpb           float64 `toml:"cxpb"`
	Mutpb          float64 `toml:"mutpb"`
	IndpbCx        float64 `toml:"indpb_cx"`
	IndpbMut       float64 `toml:"indpb_mut"`
	TournamentSize int     `toml:"tournament_size"`
	Weights        Weights `toml:"weights"`
	Machines       int     `toml:"machines"`
	AtkiDevir      float64 `toml:"atki_devir"`
	Randiman       float64 `toml:"randiman"`
	MinSplit       float64 `toml:"min_split"`
	MaxSplits      int     `toml:"max_splits"`
	Seed           int64   `toml:"seed"`
}

// DefaultRunConfig returns the production defaults from §6.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		PopulationSize: 50,
		Generations:    100,
		Cxpb:           0.8,
		Mutpb:          0.2,
		IndpbCx:        0.8,
		IndpbMut:       0.05,
		TournamentSize: 10,
		Weights:        DefaultWeights(),
		Machines:       10,
		AtkiDevir:      450,
		Randiman:       0.85,
		MinSplit:       500,
		MaxSplits:      10,
		Seed:           0,
	}
}

// ApplyTestMode reduces population/generations per the §6 `--test` flag.
func (c RunConfig) ApplyTestMode() RunConfig {
	c.PopulationSize = 20
	c.Generations = 50
	return c
}

// HumanHours formats an hour count as e.g. "68h22m", in the teacher's
// compact duration style.
func HumanHours(hours float64) string {
	d := time.Duration(hours * float64(time.Hour))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}
