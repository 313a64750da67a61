// Package catalog supplies the reference data an estimation runs against:
// component nodes and variants, calculation rules, installation types,
// building profiles, customer tiers, and global factors.
//
// A Snapshot is immutable for the duration of one calculation. Providers
// load a fresh snapshot per call; concurrent estimations never share
// mutable state.
package catalog

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/voltgruppen/kalk-cli/internal/model"
)

// Snapshot holds all reference data for one estimation.
type Snapshot struct {
	Nodes             []model.ComponentNode    `json:"nodes" yaml:"nodes"`
	Rules             []model.CalculationRule  `json:"rules" yaml:"rules"`
	InstallationTypes []model.InstallationType `json:"installation_types" yaml:"installation_types"`
	BuildingProfiles  []model.BuildingProfile  `json:"building_profiles" yaml:"building_profiles"`
	Tiers             []model.CustomerTier     `json:"tiers" yaml:"tiers"`
	Factors           model.GlobalFactors      `json:"factors" yaml:"factors"`

	nodeByCode map[string]*model.ComponentNode
	tierByCode map[string]*model.CustomerTier
	instByCode map[string]*model.InstallationType
}

// Provider loads catalog snapshots and resolves customer tiers.
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
	CustomerTier(ctx context.Context, customerID string) (string, error)
}

// Normalize validates the snapshot, drops inactive entries, sorts variants
// by sort order, and builds the lookup indexes. It must be called once
// after loading and before any lookup.
func (s *Snapshot) Normalize() error {
	if s.Factors.HourlyRate <= 0 {
		return eris.New("catalog: global hourly rate must be positive")
	}

	active := s.Nodes[:0]
	s.nodeByCode = make(map[string]*model.ComponentNode, len(s.Nodes))
	for i := range s.Nodes {
		n := s.Nodes[i]
		if !n.Active {
			continue
		}
		if n.Code == "" {
			return eris.Errorf("catalog: node %q has no code", n.Name)
		}
		if _, dup := s.nodeByCode[n.Code]; dup {
			return eris.Errorf("catalog: duplicate node code %q", n.Code)
		}
		defaults := 0
		for _, v := range n.Variants {
			if v.IsDefault {
				defaults++
			}
		}
		if defaults > 1 {
			return eris.Errorf("catalog: node %q has %d default variants", n.Code, defaults)
		}
		sort.SliceStable(n.Variants, func(a, b int) bool {
			return n.Variants[a].SortOrder < n.Variants[b].SortOrder
		})
		active = append(active, n)
	}
	s.Nodes = active
	for i := range s.Nodes {
		s.nodeByCode[s.Nodes[i].Code] = &s.Nodes[i]
	}

	activeRules := s.Rules[:0]
	for _, r := range s.Rules {
		if r.Active {
			activeRules = append(activeRules, r)
		}
	}
	s.Rules = activeRules
	sort.SliceStable(s.Rules, func(a, b int) bool {
		return s.Rules[a].Priority < s.Rules[b].Priority
	})

	s.tierByCode = make(map[string]*model.CustomerTier, len(s.Tiers))
	for i := range s.Tiers {
		s.tierByCode[s.Tiers[i].Code] = &s.Tiers[i]
	}
	s.instByCode = make(map[string]*model.InstallationType, len(s.InstallationTypes))
	for i := range s.InstallationTypes {
		s.instByCode[s.InstallationTypes[i].Code] = &s.InstallationTypes[i]
	}

	return nil
}

// NodeByCode returns the active node for a point-kind code, or nil when the
// catalog does not cover it yet.
func (s *Snapshot) NodeByCode(code string) *model.ComponentNode {
	return s.nodeByCode[code]
}

// RulesFor returns the active rules scoped to the node (and optionally its
// variant), already sorted by ascending priority.
func (s *Snapshot) RulesFor(nodeCode, variantCode string) []model.CalculationRule {
	var out []model.CalculationRule
	for _, r := range s.Rules {
		if r.NodeCode != nodeCode {
			continue
		}
		if r.VariantCode != "" && r.VariantCode != variantCode {
			continue
		}
		out = append(out, r)
	}
	return out
}

// InstallationType resolves an installation-method code. Unknown codes are a
// reference-data gap: the caller gets ok=false and carries on with no
// multiplier.
func (s *Snapshot) InstallationType(code string) (model.InstallationType, bool) {
	if it, ok := s.instByCode[code]; ok {
		return *it, true
	}
	return model.InstallationType{}, false
}

// ActiveProfile resolves the requested building profile. An empty code
// means no profile; an unknown code is skipped the same way unknown point
// kinds are.
func (s *Snapshot) ActiveProfile(code string) *model.BuildingProfile {
	if code == "" {
		return nil
	}
	for i := range s.BuildingProfiles {
		p := &s.BuildingProfiles[i]
		if p.Code == code && p.Active {
			return p
		}
	}
	return nil
}

// Tier resolves a customer-tier code, falling back to the standard tier.
func (s *Snapshot) Tier(code string) model.CustomerTier {
	if t, ok := s.tierByCode[code]; ok {
		return *t
	}
	if t, ok := s.tierByCode[TierStandard]; ok {
		return *t
	}
	return model.CustomerTier{Code: TierStandard, MinMarginPercent: 12}
}

// TierStandard is the tier every unknown or anonymous customer prices at.
const TierStandard = "standard"

// ProfileRenovation is the building profile renovation jobs default to when
// no profile is requested explicitly.
const ProfileRenovation = "RENOVERING"
