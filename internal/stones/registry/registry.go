// Package registry holds the immutable stone potency table and the stat name
// resolution used to turn caller goals into planner targets.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// ErrUnknownStone is returned when a stone key is not in the registry.
var ErrUnknownStone = errors.New("unknown stone")

// statSynonyms maps alternate goal names to the canonical defensive stat.
var statSynonyms = []struct{ alias, canonical string }{
	{"Dodge Chance", "Dodge"},
	{"Zombie Damage Reduction", "ZDR"},
	{"Damage Reduction", "DR"},
	{"Movement Speed", "MS"},
	{"Stun Chance", "Stun"},
	{"Experience", "XP"},
	{"Poison Resist", "Poison Resistance"},
}

// shortForms are tried last, after exact and case-insensitive matching.
var shortForms = map[string]string{
	"zdr": "ZDR",
	"dr":  "DR",
	"xp":  "XP",
	"ms":  "MS",
	"hp":  "HP",
}

// Registry is a read-only view of the stone table. It is safe for concurrent
// use once built.
type Registry struct {
	stones []stones.StoneType
	byKey  map[string]int

	// statNames keeps lookup names in insertion order so case-insensitive
	// resolution is deterministic.
	statNames []string
	byStat    map[string][]string
}

// New builds a registry from the given stone types. Keys must be unique and
// every stone needs a defensive stat with a full rank table.
func New(types []stones.StoneType) (*Registry, error) {
	if len(types) == 0 {
		return nil, errors.New("registry needs at least one stone type")
	}

	r := &Registry{
		stones: make([]stones.StoneType, 0, len(types)),
		byKey:  make(map[string]int, len(types)),
		byStat: make(map[string][]string),
	}

	for _, st := range types {
		if st.Key == "" {
			return nil, errors.New("stone type with empty key")
		}
		if _, dup := r.byKey[st.Key]; dup {
			return nil, fmt.Errorf("duplicate stone type %q", st.Key)
		}
		if st.DefensiveStat == "" {
			return nil, fmt.Errorf("stone type %q has no defensive stat", st.Key)
		}
		if len(st.DefensiveLevels) < stones.MaxRank {
			return nil, fmt.Errorf("stone type %q has %d defensive levels, need %d",
				st.Key, len(st.DefensiveLevels), stones.MaxRank)
		}
		if st.Name == "" {
			st.Name = st.Key
		}

		r.byKey[st.Key] = len(r.stones)
		r.stones = append(r.stones, cloneStone(st))
		r.addStat(st.DefensiveStat, st.Key)
	}

	for _, syn := range statSynonyms {
		keys, ok := r.byStat[syn.canonical]
		if !ok {
			continue
		}
		for _, k := range keys {
			r.addStat(syn.alias, k)
		}
	}

	return r, nil
}

// Default returns a registry over the built-in stone table.
func Default() *Registry {
	r, err := New(DefaultStones())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

func (r *Registry) addStat(name, key string) {
	if _, ok := r.byStat[name]; !ok {
		r.statNames = append(r.statNames, name)
	}
	r.byStat[name] = append(r.byStat[name], key)
}

func cloneStone(st stones.StoneType) stones.StoneType {
	st.OffensiveLevels = append([]float64(nil), st.OffensiveLevels...)
	st.DefensiveLevels = append([]float64(nil), st.DefensiveLevels...)
	if st.OffensiveFlatLevels != nil {
		st.OffensiveFlatLevels = append([]float64(nil), st.OffensiveFlatLevels...)
	}
	return st
}

// All returns a copy of every stone type in registry order.
func (r *Registry) All() []stones.StoneType {
	out := make([]stones.StoneType, len(r.stones))
	for i, st := range r.stones {
		out[i] = cloneStone(st)
	}
	return out
}

// Keys returns stone keys in registry order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.stones))
	for i, st := range r.stones {
		out[i] = st.Key
	}
	return out
}

// Get looks up a stone by key.
func (r *Registry) Get(key string) (stones.StoneType, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return stones.StoneType{}, false
	}
	return r.stones[i], true
}

// Stone looks up a stone by key or display name, ignoring case.
func (r *Registry) Stone(name string) (stones.StoneType, error) {
	trimmed := strings.TrimSpace(name)
	if st, ok := r.Get(trimmed); ok {
		return cloneStone(st), nil
	}
	for _, st := range r.stones {
		if strings.EqualFold(st.Key, trimmed) || strings.EqualFold(st.Name, trimmed) {
			return cloneStone(st), nil
		}
	}
	return stones.StoneType{}, fmt.Errorf("%w: %q", ErrUnknownStone, name)
}

// Search returns stones whose key, name, or stat names contain the query.
func (r *Registry) Search(query string) []stones.StoneType {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []stones.StoneType
	for _, st := range r.stones {
		fields := []string{st.Key, st.Name, st.DefensiveStat, st.OffensiveStat}
		for _, f := range fields {
			if f != "" && strings.Contains(strings.ToLower(f), q) {
				out = append(out, cloneStone(st))
				break
			}
		}
	}
	return out
}

// MaxRankPotency returns the rank 7 defensive value of a stone, 0 if unknown.
func (r *Registry) MaxRankPotency(key string) float64 {
	st, ok := r.Get(key)
	if !ok {
		return 0
	}
	return st.MaxRankPotency()
}

// DefensiveStat returns the canonical stat a stone feeds.
func (r *Registry) DefensiveStat(key string) string {
	st, ok := r.Get(key)
	if !ok {
		return ""
	}
	return st.DefensiveStat
}

// Name returns the display name of a stone, falling back to the key.
func (r *Registry) Name(key string) string {
	st, ok := r.Get(key)
	if !ok {
		return key
	}
	return st.Name
}

// ResolveStat maps a caller supplied stat name to the stone keys that feed
// it. Matching is exact first, then case-insensitive, then the short forms.
// Unresolvable names return nil.
func (r *Registry) ResolveStat(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	if keys, ok := r.byStat[trimmed]; ok {
		return append([]string(nil), keys...)
	}
	for _, n := range r.statNames {
		if strings.EqualFold(n, trimmed) {
			return append([]string(nil), r.byStat[n]...)
		}
	}
	if canonical, ok := shortForms[strings.ToLower(trimmed)]; ok {
		if keys, ok := r.byStat[canonical]; ok {
			return append([]string(nil), keys...)
		}
	}
	return nil
}

// StatNames returns every name ResolveStat accepts verbatim, sorted.
func (r *Registry) StatNames() []string {
	out := append([]string(nil), r.statNames...)
	sort.Strings(out)
	return out
}
