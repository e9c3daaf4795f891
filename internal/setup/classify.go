// Package setup implements the setup-change classifier (§4.2): a pure
// function deciding the setup category and minutes between any two
// adjacent work items on a machine.
package setup

import (
	"strings"

	"github.com/mansurdincer/loomsched/internal/domain"
)

// blankTokens are the sentinel strings that must be treated as ∅ once
// trimmed (§4.2, §6).
var blankTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"0":    true,
}

// NormalizeCode cleans a raw code string into an optional code: trims
// whitespace, strips a trailing ".0", and maps blank-equivalent sentinels
// to nil. Downstream comparisons use the optional, never the raw string
// (§9 "Stringly-typed blank codes").
func NormalizeCode(raw string) *string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	if blankTokens[strings.ToLower(s)] {
		return nil
	}
	return &s
}

// Classify decides the setup kind and minutes between prev and cur. prev
// is nil when cur is the first item assigned to a machine.
func Classify(prev, cur *domain.WorkItem) (domain.SetupKind, float64) {
	if prev == nil {
		return domain.SetupTeam, domain.SetupTeam.Minutes()
	}
	if cur.VariantCode == nil || prev.VariantCode == nil {
		return domain.SetupTeam, domain.SetupTeam.Minutes()
	}
	if *cur.VariantCode == *prev.VariantCode {
		return domain.SetupVariant, domain.SetupVariant.Minutes()
	}
	if cur.UlakCode != nil && prev.UlakCode != nil && *cur.UlakCode == *prev.UlakCode {
		return domain.SetupUlak, domain.SetupUlak.Minutes()
	}
	return domain.SetupTeam, domain.SetupTeam.Minutes()
}
