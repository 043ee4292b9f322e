// Package stones contains the core types for the stone socket planner server.
package stones

import (
	"maps"
	"slices"
)

// Socket capacities of the gear set being planned.
const (
	DefensiveSockets = 12
	OffensiveSockets = 8

	// MaxRank is the highest rank a base stone can reach before merging.
	MaxRank = 7
)

// ============================================
// STONE TYPES
// ============================================

// StoneType describes one base stone and its per-rank potency tables.
type StoneType struct {
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Color           string    `json:"color,omitempty"`
	OffensiveStat   string    `json:"offensive"`
	DefensiveStat   string    `json:"defensive"`
	OffensiveType   string    `json:"offensiveType,omitempty"` // "percentage" or "flat"
	DefensiveType   string    `json:"defensiveType,omitempty"`
	OffensiveLevels []float64 `json:"offensiveLevels"`
	DefensiveLevels []float64 `json:"defensiveLevels"`

	// Secondary offensive axis, only carried by a few stones.
	OffensiveSecondary     string    `json:"offensiveSecondary,omitempty"`
	OffensiveSecondaryType string    `json:"offensiveSecondaryType,omitempty"`
	OffensiveFlatLevels    []float64 `json:"offensiveFlatLevels,omitempty"`
}

// Potency returns the defensive value at a 1-based rank, or 0 when the rank
// is outside the table.
func (s StoneType) Potency(rank int) float64 {
	if rank < 1 || rank > len(s.DefensiveLevels) {
		return 0
	}
	return s.DefensiveLevels[rank-1]
}

// OffensivePotency returns the offensive value at a 1-based rank.
func (s StoneType) OffensivePotency(rank int) float64 {
	if rank < 1 || rank > len(s.OffensiveLevels) {
		return 0
	}
	return s.OffensiveLevels[rank-1]
}

// MaxRankPotency is the defensive value of a fully ranked stone, the only
// value the planner works with.
func (s StoneType) MaxRankPotency() float64 {
	return s.Potency(MaxRank)
}

// ============================================
// INPUT TYPES
// ============================================

// Goal is a caller supplied threshold on one defensive stat.
type Goal struct {
	Stat  string  `json:"stat" yaml:"stat"`
	Value float64 `json:"value" yaml:"value"`
}

// PairComposite is a two-stone merge ("super") held in inventory.
type PairComposite struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
}

// TripleComposite is a three-stone merge ("mega") held in inventory.
type TripleComposite struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Tertiary  string `json:"tertiary" yaml:"tertiary"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
}

// Inventory is the caller's snapshot of owned stones. The planner only reads
// it; all bookkeeping happens on private copies.
type Inventory struct {
	BaseCounts       map[string]int    `json:"baseCounts" yaml:"baseCounts"`
	PairComposites   []PairComposite   `json:"pairComposites" yaml:"pairComposites"`
	TripleComposites []TripleComposite `json:"tripleComposites" yaml:"tripleComposites"`
}

// PlanOptions tunes the search. Zero values fall back to the planner defaults.
type PlanOptions struct {
	MaxMerges   int `json:"maxMerges,omitempty" yaml:"maxMerges" validate:"min=0"`
	BeamWidth   int `json:"beamWidth,omitempty" yaml:"beamWidth" validate:"min=0,max=512"`
	TopChildren int `json:"topChildren,omitempty" yaml:"topChildren" validate:"min=0,max=256"`
	TimeLimitMs int `json:"timeLimitMs,omitempty" yaml:"timeLimitMs" validate:"min=0,max=60000"`

	// TryExactMegaMix enables the constructive solver. Nil means enabled.
	TryExactMegaMix *bool `json:"tryExactMegaMix,omitempty" yaml:"tryExactMegaMix"`
	DisablePrefill  bool  `json:"disablePrefill,omitempty" yaml:"disablePrefill"`
}

// ExactEnabled reports whether the constructive solver may run.
func (o PlanOptions) ExactEnabled() bool {
	return o.TryExactMegaMix == nil || *o.TryExactMegaMix
}

// ============================================
// PLAN TYPES
// ============================================

// PlacementKind identifies what occupies a socket.
type PlacementKind string

const (
	KindBase           PlacementKind = "base"
	KindPair           PlacementKind = "pair"
	KindTriple         PlacementKind = "triple"
	KindPairExisting   PlacementKind = "pair-existing"
	KindTripleExisting PlacementKind = "triple-existing"
	KindUpgrade        PlacementKind = "upgrade"
)

// Placement sources.
const (
	SourceBase     = "base"
	SourceCrafted  = "crafted"
	SourceExisting = "existing"
	SourceUpgrade  = "upgrade"
)

// Strategy names the solver stage that produced a plan.
type Strategy string

const (
	StrategyExact        Strategy = "exact"
	StrategyPrefill      Strategy = "prefill"
	StrategyPrefillExact Strategy = "prefill-exact"
	StrategyBeam         Strategy = "beam"
	StrategyBeamRelaxed  Strategy = "beam-relaxed"
	StrategyGreedy       Strategy = "greedy"
)

// IsValid returns true if the strategy is a known value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyExact, StrategyPrefill, StrategyPrefillExact, StrategyBeam, StrategyBeamRelaxed, StrategyGreedy:
		return true
	}
	return false
}

// Placement is one planned socket.
type Placement struct {
	Kind         PlacementKind      `json:"kind"`
	Source       string             `json:"source"`
	Parts        []string           `json:"parts"`
	Label        string             `json:"label"`
	MergeCost    int                `json:"mergeCost"`
	Contribution map[string]float64 `json:"contribution"`
}

// MergeStep is one merge the player has to perform.
type MergeStep struct {
	Type      string `json:"type"` // "pair", "triple" or "upgrade"
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary,omitempty"`
	Cost      int    `json:"cost"`
}

// Plan is the consumption ledger and socket layout for one planning call.
type Plan struct {
	Sockets                   []Placement        `json:"sockets"`
	MergesUsed                int                `json:"mergesUsed"`
	Merges                    []MergeStep        `json:"merges"`
	UsedL7                    map[string]int     `json:"usedL7"`
	UsedExistingPairs         map[string]int     `json:"usedExistingPairs"`
	UsedExistingTriples       map[string]int     `json:"usedExistingTriples"`
	MissingL7                 map[string]int     `json:"missingL7"`
	SocketsUsed               int                `json:"socketsUsed"`
	SocketsAvailableDefensive int                `json:"socketsAvailableDefensive"`
	SocketsAvailableOffensive int                `json:"socketsAvailableOffensive"`
	Goals                     map[string]float64 `json:"goals"`
	Achieved                  map[string]float64 `json:"achieved"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Sockets = slices.Clone(p.Sockets)
	for i, s := range out.Sockets {
		s.Parts = slices.Clone(s.Parts)
		s.Contribution = maps.Clone(s.Contribution)
		out.Sockets[i] = s
	}
	out.Merges = slices.Clone(p.Merges)
	out.UsedL7 = maps.Clone(p.UsedL7)
	out.UsedExistingPairs = maps.Clone(p.UsedExistingPairs)
	out.UsedExistingTriples = maps.Clone(p.UsedExistingTriples)
	out.MissingL7 = maps.Clone(p.MissingL7)
	out.Goals = maps.Clone(p.Goals)
	out.Achieved = maps.Clone(p.Achieved)
	return &out
}

// PlanResult is the tagged outcome of a planning call. Plan is nil only when
// no valid goal survived normalization.
type PlanResult struct {
	Success   bool     `json:"success"`
	Reason    string   `json:"reason,omitempty"`
	Plan      *Plan    `json:"plan"`
	PlanID    string   `json:"planId,omitempty"`
	Strategy  Strategy `json:"strategy,omitempty"`
	ElapsedMs int64    `json:"elapsedMs"`
}

// Target is a normalized goal bound to the stone type that feeds it.
type Target struct {
	Stat           string  `json:"stat"`
	Stone          string  `json:"stone"`
	Threshold      float64 `json:"threshold"`
	PerUnitPotency float64 `json:"perUnitPotency"`
}

// ============================================
// TOOL REQUEST/RESPONSE TYPES
// ============================================

// PlanBuildRequest is the input for the plan_build tool.
type PlanBuildRequest struct {
	Goals     []Goal      `json:"goals" yaml:"goals"`
	Inventory Inventory   `json:"inventory" yaml:"inventory"`
	Options   PlanOptions `json:"options" yaml:"options"`
}

// PlanBatchRequest is the input for the plan_batch tool.
type PlanBatchRequest struct {
	Requests []PlanBuildRequest `json:"requests"`
}

// PlanBatchResponse is the output for the plan_batch tool. Results keep the
// order of the requests.
type PlanBatchResponse struct {
	Results []*PlanResult `json:"results"`
}

// StoneLookupRequest is the input for the stone_lookup tool.
type StoneLookupRequest struct {
	Stone  string `json:"stone,omitempty"`
	Search string `json:"search,omitempty"`
}

// StoneLookupResponse is the output for the stone_lookup tool.
type StoneLookupResponse struct {
	Stone         *StoneType       `json:"stone,omitempty"`
	MaxRankValue  float64          `json:"maxRankValue,omitempty"`
	AsPrimary     float64          `json:"asPrimary,omitempty"`
	AsSecondary   float64          `json:"asSecondary,omitempty"`
	SearchResults []StoneSearchHit `json:"searchResults,omitempty"`
}

// StoneSearchHit is a lightweight stone match for search results.
type StoneSearchHit struct {
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	DefensiveStat   string    `json:"defensive"`
}

// ResolveGoalsRequest is the input for the resolve_goals tool.
type ResolveGoalsRequest struct {
	Goals []Goal `json:"goals"`
}

// ResolveGoalsResponse is the output for the resolve_goals tool.
type ResolveGoalsResponse struct {
	Targets []Target           `json:"targets"`
	Goals   map[string]float64 `json:"goals"`
	Dropped []Goal             `json:"dropped,omitempty"`
	Stones  []string           `json:"stones"`
}

// PlanHistoryRequest is the input for the plan_history tool.
type PlanHistoryRequest struct {
	Limit int `json:"limit"`
}

// PlanRun is one logged planning call.
type PlanRun struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"createdAt"`
	Goals      []Goal `json:"goals"`
	Success    bool   `json:"success"`
	Strategy   string `json:"strategy,omitempty"`
	MergesUsed int    `json:"mergesUsed"`
	Sockets    int    `json:"socketsUsed"`
	ElapsedMs  int64  `json:"elapsedMs"`
	Reason     string `json:"reason,omitempty"`
}

// PlanHistoryResponse is the output for the plan_history tool.
type PlanHistoryResponse struct {
	Runs []PlanRun `json:"runs"`
}
