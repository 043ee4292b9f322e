package planner

// tripleKey matches triples by primary with the secondaries unordered.
type tripleKey struct {
	primary string
	lo, hi  string
}

func newTripleKey(p, a, b string) tripleKey {
	if b < a {
		a, b = b, a
	}
	return tripleKey{primary: p, lo: a, hi: b}
}

// pairKey matches pairs with both parts unordered.
type pairKey struct {
	lo, hi string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// substitute swaps freshly merged pairs and triples in seq for matching
// composites from the caller's inventory. Existing stones already in seq are
// reserved first. Contributions never change and merge cost never rises.
func (c *catalog) substitute(seq []candidate) []candidate {
	triplesLeft := make(map[tripleKey]int)
	for _, t := range c.inv.triples {
		triplesLeft[newTripleKey(t.Primary, t.Secondary, t.Tertiary)] += t.Quantity
	}
	pairsLeft := make(map[pairKey]int)
	for _, p := range c.inv.pairs {
		pairsLeft[newPairKey(p.Primary, p.Secondary)] += p.Quantity
	}

	take := func(n int) (int, bool) {
		if n > 0 {
			return n - 1, true
		}
		return n, false
	}

	out := make([]candidate, len(seq))
	copy(out, seq)

	for _, cand := range out {
		switch cand.kind {
		case KindTripleExisting:
			k := newTripleKey(cand.parts[0], cand.parts[1], cand.parts[2])
			triplesLeft[k], _ = take(triplesLeft[k])
		case KindPairExisting, KindUpgrade:
			k := newPairKey(cand.parts[0], cand.parts[1])
			pairsLeft[k], _ = take(pairsLeft[k])
		case KindBase, KindPairNew, KindTripleNew:
		}
	}

	for i, cand := range out {
		switch cand.kind {
		case KindTripleNew:
			a, b, d := cand.parts[0], cand.parts[1], cand.parts[2]
			tk := newTripleKey(a, b, d)
			if n, ok := take(triplesLeft[tk]); ok {
				triplesLeft[tk] = n
				out[i] = c.newCandidate(KindTripleExisting, a, b, d)
				continue
			}
			// upgrade an owned pair holding the primary and either secondary
			for _, s := range []string{b, d} {
				pk := newPairKey(a, s)
				if n, ok := take(pairsLeft[pk]); ok {
					pairsLeft[pk] = n
					third := d
					if s == d {
						third = b
					}
					out[i] = c.newCandidate(KindUpgrade, a, s, third)
					break
				}
			}
		case KindPairNew:
			p, s := cand.parts[0], cand.parts[1]
			pk := newPairKey(p, s)
			if n, ok := take(pairsLeft[pk]); ok {
				pairsLeft[pk] = n
				// planned orientation is kept so the contribution is unchanged
				out[i] = c.newCandidate(KindPairExisting, p, s)
			}
		case KindBase, KindPairExisting, KindTripleExisting, KindUpgrade:
		}
	}
	return out
}
