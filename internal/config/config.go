// Package config loads run configuration from an optional TOML file,
// layered over compiled-in defaults (SPEC_FULL §4.8).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mansurdincer/loomsched/internal/domain"
)

// fileConfig mirrors domain.RunConfig's shape for TOML decoding; fields
// left absent from the file keep their DefaultRunConfig value.
type fileConfig struct {
	PopulationSize *int            `toml:"population_size"`
	Generations    *int            `toml:"generations"`
	Cxpb           *float64        `toml:"cxpb"`
	Mutpb          *float64        `toml:"mutpb"`
	IndpbCx        *float64        `toml:"indpb_cx"`
	IndpbMut       *float64        `toml:"indpb_mut"`
	TournamentSize *int            `toml:"tournament_size"`
	Weights        *weightsSection `toml:"weights"`
	Machines       *int            `toml:"machines"`
	AtkiDevir      *float64        `toml:"atki_devir"`
	Randiman       *float64        `toml:"randiman"`
	MinSplit       *float64        `toml:"min_split"`
	MaxSplits      *int            `toml:"max_splits"`
	Seed           *int64          `toml:"seed"`
}

type weightsSection struct {
	Makespan *float64 `toml:"makespan"`
	Balance  *float64 `toml:"balance"`
	Changes  *float64 `toml:"changes"`
}

// Load reads path (if non-empty) and merges its values over
// domain.DefaultRunConfig. A missing path is not an error: the defaults
// are returned unchanged.
func Load(path string) (domain.RunConfig, error) {
	cfg := domain.DefaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return domain.RunConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyOverrides(&cfg, fc)
	return cfg, nil
}

func applyOverrides(cfg *domain.RunConfig, fc fileConfig) {
	setInt(&cfg.PopulationSize, fc.PopulationSize)
	setInt(&cfg.Generations, fc.Generations)
	setFloat(&cfg.Cxpb, fc.Cxpb)
	setFloat(&cfg.Mutpb, fc.Mutpb)
	setFloat(&cfg.IndpbCx, fc.IndpbCx)
	setFloat(&cfg.IndpbMut, fc.IndpbMut)
	setInt(&cfg.TournamentSize, fc.TournamentSize)
	setInt(&cfg.Machines, fc.Machines)
	setFloat(&cfg.AtkiDevir, fc.AtkiDevir)
	setFloat(&cfg.Randiman, fc.Randiman)
	setFloat(&cfg.MinSplit, fc.MinSplit)
	setInt(&cfg.MaxSplits, fc.MaxSplits)
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.Weights != nil {
		setFloat(&cfg.Weights.Makespan, fc.Weights.Makespan)
		setFloat(&cfg.Weights.Balance, fc.Weights.Balance)
		setFloat(&cfg.Weights.Changes, fc.Weights.Changes)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
