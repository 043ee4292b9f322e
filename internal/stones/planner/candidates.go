package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

// Kind is the closed set of things a socket can hold.
type Kind int

const (
	KindBase Kind = iota
	KindPairNew
	KindPairExisting
	KindTripleNew
	KindTripleExisting
	KindUpgrade
)

// String returns the placement kind used on the wire.
func (k Kind) String() string {
	return string(k.placementKind())
}

// MergeCost is the number of merge operations the kind implies.
func (k Kind) MergeCost() int {
	switch k {
	case KindPairNew, KindUpgrade:
		return 1
	case KindTripleNew:
		return 2
	case KindBase, KindPairExisting, KindTripleExisting:
		return 0
	}
	return 0
}

func (k Kind) placementKind() stones.PlacementKind {
	switch k {
	case KindBase:
		return stones.KindBase
	case KindPairNew:
		return stones.KindPair
	case KindPairExisting:
		return stones.KindPairExisting
	case KindTripleNew:
		return stones.KindTriple
	case KindTripleExisting:
		return stones.KindTripleExisting
	case KindUpgrade:
		return stones.KindUpgrade
	}
	return stones.PlacementKind(fmt.Sprintf("kind(%d)", int(k)))
}

func (k Kind) source() string {
	switch k {
	case KindBase:
		return stones.SourceBase
	case KindPairNew, KindTripleNew:
		return stones.SourceCrafted
	case KindPairExisting, KindTripleExisting:
		return stones.SourceExisting
	case KindUpgrade:
		return stones.SourceUpgrade
	}
	return ""
}

// candidate is one placeable unit. Parts are ordered with the primary first;
// for an upgrade the first two parts are the consumed pair.
type candidate struct {
	kind  Kind
	parts []string
	cost  int
	vec   []float64
	units int
	label string

	// footprint against the inventory slots, -1 when unused
	pairSlot   int
	tripleSlot int
}

// inventory is the planner's private, normalized copy of the caller's stones.
type inventory struct {
	base    map[string]int
	pairs   []stones.PairComposite
	triples []stones.TripleComposite
}

func normalizeInventory(reg *registry.Registry, inv stones.Inventory) *inventory {
	out := &inventory{base: make(map[string]int, len(inv.BaseCounts))}

	for key, n := range inv.BaseCounts {
		if n <= 0 {
			continue
		}
		out.base[canonicalKey(reg, key)] += n
	}
	for _, p := range inv.PairComposites {
		if p.Quantity <= 0 {
			continue
		}
		out.pairs = append(out.pairs, stones.PairComposite{
			Primary:   canonicalKey(reg, p.Primary),
			Secondary: canonicalKey(reg, p.Secondary),
			Quantity:  p.Quantity,
		})
	}
	for _, t := range inv.TripleComposites {
		if t.Quantity <= 0 {
			continue
		}
		out.triples = append(out.triples, stones.TripleComposite{
			Primary:   canonicalKey(reg, t.Primary),
			Secondary: canonicalKey(reg, t.Secondary),
			Tertiary:  canonicalKey(reg, t.Tertiary),
			Quantity:  t.Quantity,
		})
	}
	return out
}

// canonicalKey maps a display name or differently cased key onto the registry
// key. Unknown names are kept as given and contribute nothing.
func canonicalKey(reg *registry.Registry, name string) string {
	if _, ok := reg.Get(name); ok {
		return name
	}
	if st, err := reg.Stone(name); err == nil {
		return st.Key
	}
	return strings.TrimSpace(name)
}

func (inv *inventory) hasComposites() bool {
	return len(inv.pairs) > 0 || len(inv.triples) > 0
}

func (inv *inventory) pairCounts() []int {
	out := make([]int, len(inv.pairs))
	for i, p := range inv.pairs {
		out[i] = p.Quantity
	}
	return out
}

func (inv *inventory) tripleCounts() []int {
	out := make([]int, len(inv.triples))
	for i, t := range inv.triples {
		out[i] = t.Quantity
	}
	return out
}

// catalog is the candidate list for one planning call plus the helpers that
// build new candidates against the same axes.
type catalog struct {
	reg   *registry.Registry
	ts    *targetSet
	inv   *inventory
	items []candidate

	// baseIdx maps a target stone to its base candidate in items
	baseIdx map[string]int
}

// buildCatalog enumerates candidates over the target stones only.
func buildCatalog(reg *registry.Registry, ts *targetSet, inv *inventory) *catalog {
	c := &catalog{reg: reg, ts: ts, inv: inv, baseIdx: make(map[string]int)}
	isTarget := make(map[string]bool, len(ts.types))
	for _, t := range ts.types {
		isTarget[t] = true
	}

	for i, t := range inv.triples {
		if !isTarget[t.Primary] && !isTarget[t.Secondary] && !isTarget[t.Tertiary] {
			continue
		}
		cand := c.newCandidate(KindTripleExisting, t.Primary, t.Secondary, t.Tertiary)
		cand.tripleSlot = i
		c.items = append(c.items, cand)
	}
	for i, p := range inv.pairs {
		if !isTarget[p.Primary] && !isTarget[p.Secondary] {
			continue
		}
		cand := c.newCandidate(KindPairExisting, p.Primary, p.Secondary)
		cand.pairSlot = i
		c.items = append(c.items, cand)
	}

	for _, t := range ts.types {
		c.baseIdx[t] = len(c.items)
		c.items = append(c.items, c.newCandidate(KindBase, t))
	}

	for _, a := range ts.types {
		for _, b := range ts.types {
			if a == b {
				continue
			}
			c.items = append(c.items, c.newCandidate(KindPairNew, a, b))
		}
	}

	sorted := append([]string(nil), ts.types...)
	sort.Strings(sorted)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			for k := j + 1; k < len(sorted); k++ {
				a, b, d := sorted[i], sorted[j], sorted[k]
				c.items = append(c.items,
					c.newCandidate(KindTripleNew, a, b, d),
					c.newCandidate(KindTripleNew, b, a, d),
					c.newCandidate(KindTripleNew, d, a, b),
				)
			}
		}
	}

	for i, p := range inv.pairs {
		for _, t := range ts.types {
			if t == p.Primary || t == p.Secondary {
				continue
			}
			cand := c.newCandidate(KindUpgrade, p.Primary, p.Secondary, t)
			cand.pairSlot = i
			c.items = append(c.items, cand)
		}
	}

	return c
}

// newCandidate builds a candidate with its dense contribution vector. The
// primary counts in full, every other part at half.
func (c *catalog) newCandidate(kind Kind, parts ...string) candidate {
	cand := candidate{
		kind:       kind,
		parts:      parts,
		cost:       kind.MergeCost(),
		vec:        make([]float64, len(c.ts.axes)),
		label:      c.label(kind, parts),
		pairSlot:   -1,
		tripleSlot: -1,
	}
	for i, p := range parts {
		ax, ok := c.ts.axisOf[c.reg.DefensiveStat(p)]
		if !ok {
			continue
		}
		v := c.reg.MaxRankPotency(p)
		if v <= 0 {
			continue
		}
		if i == 0 {
			cand.vec[ax] += v
			cand.units += 2
		} else {
			cand.vec[ax] += v / 2
			cand.units++
		}
	}
	return cand
}

func (c *catalog) label(kind Kind, parts []string) string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = c.reg.Name(p)
	}
	switch kind {
	case KindBase:
		return "L7 " + names[0]
	case KindPairNew:
		return "Pair " + strings.Join(names, "+")
	case KindTripleNew:
		return "Triple " + strings.Join(names, "+")
	case KindPairExisting:
		return "Existing Pair " + strings.Join(names, "+")
	case KindTripleExisting:
		return "Existing Triple " + strings.Join(names, "+")
	case KindUpgrade:
		return fmt.Sprintf("Upgrade Pair %s+%s -> +%s", names[0], names[1], names[2])
	}
	return strings.Join(names, "+")
}

// contribution is the full per-stat contribution of a candidate, including
// stats no goal asked for.
func (c *catalog) contribution(cand candidate) map[string]float64 {
	m := make(map[string]float64, len(cand.parts))
	for i, p := range cand.parts {
		v := c.reg.MaxRankPotency(p)
		if v <= 0 {
			continue
		}
		if i > 0 {
			v /= 2
		}
		m[c.reg.DefensiveStat(p)] += v
	}
	return m
}

// available reports whether a candidate's composite footprint is still in
// stock. Base stones are always available during search.
func available(cand *candidate, pairs, triples []int) bool {
	switch cand.kind {
	case KindPairExisting, KindUpgrade:
		return cand.pairSlot >= 0 && pairs[cand.pairSlot] > 0
	case KindTripleExisting:
		return cand.tripleSlot >= 0 && triples[cand.tripleSlot] > 0
	case KindBase, KindPairNew, KindTripleNew:
		return true
	}
	return false
}

// consume decrements the composite footprint of a candidate in place.
func consume(cand *candidate, pairs, triples []int) {
	switch cand.kind {
	case KindPairExisting, KindUpgrade:
		if cand.pairSlot >= 0 && pairs[cand.pairSlot] > 0 {
			pairs[cand.pairSlot]--
		}
	case KindTripleExisting:
		if cand.tripleSlot >= 0 && triples[cand.tripleSlot] > 0 {
			triples[cand.tripleSlot]--
		}
	case KindBase, KindPairNew, KindTripleNew:
	}
}
