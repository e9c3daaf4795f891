// Package ingest implements the Order Ingest & Splitter (§4.1): it turns
// raw orders into immutable work items, computing machine speed and
// production duration, and splitting any order that cannot meet its due
// date into balanced sub-items.
package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
)

// DefaultSpeedMetersPerHour is used when pick density is unknown or
// non-positive (§4.1).
const DefaultSpeedMetersPerHour = 22.0

// Splitter converts RawOrders into WorkItems per the speed model and
// splitting rule in §4.1. It holds no mutable state and is safe for
// concurrent use.
type Splitter struct {
	cfg domain.RunConfig
}

// NewSplitter creates a Splitter bound to the loom constants in cfg
// (AtkiDevir, Randiman, MinSplit, MaxSplits).
func NewSplitter(cfg domain.RunConfig) *Splitter {
	return &Splitter{cfg: cfg}
}

// MachineSpeed computes meters/hour from pick density (picks/cm), per the
// formula in §4.1: E = ATKI_DEVIR*RANDIMAN effective picks/min, speed =
// (E/p)*60/100, rounded to two decimals. Non-positive or missing density
// yields the default speed.
func (s *Splitter) MachineSpeed(pickDensity float64) float64 {
	if pickDensity <= 0 {
		return DefaultSpeedMetersPerHour
	}
	effective := s.cfg.AtkiDevir * s.cfg.Randiman
	speed := (effective / pickDensity) * 60 / 100
	return math.Round(speed*100) / 100
}

// Split converts one RawOrder into one or more WorkItems, deciding
// whether the order must be split to meet its due date (§4.1 steps 1-4).
// now is the ingest timestamp used to compute remaining time.
func (s *Splitter) Split(order domain.RawOrder, now time.Time) ([]domain.WorkItem, error) {
	speed := s.MachineSpeed(order.PickDensity)
	duration := order.QuantityMeters / speed

	id := fmt.Sprintf("%s_%s", order.OrderID, order.LineID)
	base := domain.WorkItem{
		ID:             id,
		OrderID:        order.OrderID,
		LineID:         order.LineID,
		QuantityMeters: order.QuantityMeters,
		DurationHours:  duration,
		DueAt:          order.DueAt,
		TypeName:       order.TypeName,
		VariantCode:    order.VariantCode,
		UlakCode:       order.UlakCode,
	}
	if order.PickDensity > 0 {
		pd := order.PickDensity
		base.PickDensity = &pd
	}

	remainingHours := order.DueAt.Sub(now).Hours()
	if remainingHours < 1 {
		remainingHours = 1
	}

	if duration <= remainingHours {
		return []domain.WorkItem{base}, nil
	}

	requiredSplits := int(math.Floor(duration/remainingHours)) + 1
	numSplits := requiredSplits
	if numSplits > s.cfg.MaxSplits {
		numSplits = s.cfg.MaxSplits
	}

	splitQty := order.QuantityMeters / float64(numSplits)
	if splitQty < s.cfg.MinSplit {
		numSplits = int(order.QuantityMeters / s.cfg.MinSplit)
		if numSplits <= 1 {
			return []domain.WorkItem{base}, nil
		}
		splitQty = order.QuantityMeters / float64(numSplits)
	}

	items := make([]domain.WorkItem, numSplits)
	for i := 0; i < numSplits; i++ {
		item := base
		item.ID = fmt.Sprintf("%s_%d", id, i+1)
		item.QuantityMeters = splitQty
		item.DurationHours = splitQty / speed
		items[i] = item
	}
	observability.OrdersSplitTotal.Inc()
	return items, nil
}

// SplitAll applies Split to every order and concatenates the results, in
// input order.
func (s *Splitter) SplitAll(orders []domain.RawOrder, now time.Time) ([]domain.WorkItem, error) {
	items := make([]domain.WorkItem, 0, len(orders))
	for _, o := range orders {
		its, err := s.Split(o, now)
		if err != nil {
			return nil, fmt.Errorf("split order %s_%s: %w", o.OrderID, o.LineID, err)
		}
		items = append(items, its...)
	}
	return items, nil
}
