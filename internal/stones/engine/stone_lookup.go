package engine

import (
	"context"
	"fmt"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

const searchLimit = 10

// StoneLookup executes the stone_lookup tool logic.
func (e *Engine) StoneLookup(ctx context.Context, req stones.StoneLookupRequest) (*stones.StoneLookupResponse, error) {
	resp := &stones.StoneLookupResponse{}

	// If search term provided, search first
	if req.Search != "" {
		hits, err := e.searchStones(ctx, req.Search)
		if err != nil {
			return nil, err
		}
		resp.SearchResults = hits

		// If exactly one result and no stone provided, use it
		if len(hits) == 1 && req.Stone == "" {
			req.Stone = hits[0].Key
		}
	}

	if req.Stone == "" {
		return resp, nil
	}

	st, err := e.Registry().Stone(req.Stone)
	if err != nil {
		return nil, fmt.Errorf("looking up stone: %w", err)
	}
	resp.Stone = &st
	resp.MaxRankValue = st.MaxRankPotency()
	resp.AsPrimary = st.MaxRankPotency()
	resp.AsSecondary = 0.5 * st.MaxRankPotency()

	return resp, nil
}

// searchStones prefers the stored table and falls back to the registry when
// the store is absent or has no match.
func (e *Engine) searchStones(ctx context.Context, term string) ([]stones.StoneSearchHit, error) {
	if e.stones != nil {
		hits, err := e.stones.SearchStones(ctx, term, searchLimit)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			return hits, nil
		}
	}

	var hits []stones.StoneSearchHit
	for _, st := range e.Registry().Search(term) {
		if len(hits) == searchLimit {
			break
		}
		hits = append(hits, stones.StoneSearchHit{
			Key:           st.Key,
			Name:          st.Name,
			DefensiveStat: st.DefensiveStat,
		})
	}
	return hits, nil
}
