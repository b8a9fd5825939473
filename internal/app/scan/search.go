package scan

import (
	"errors"
	"sort"
	"strings"

	"nearbyradar/internal/domain/radar"

	"github.com/agnivade/levenshtein"
)

var ErrInvalidRequest = errors.New("invalid radar request")

type Match struct {
	Entity radar.AgentSnapshot `json:"entity"`
	Score  int                 `json:"score"`
}

// Search ranks entities by name. Substring matches come first, then the rest
// by edit distance.
func Search(entities []radar.AgentSnapshot, query string, limit int) ([]Match, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrInvalidRequest
	}
	type ranked struct {
		Match
		substr bool
	}
	all := make([]ranked, 0, len(entities))
	for _, e := range entities {
		name := strings.ToLower(e.Name)
		all = append(all, ranked{
			Match:  Match{Entity: e, Score: levenshtein.ComputeDistance(q, name)},
			substr: strings.Contains(name, q),
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].substr != all[j].substr {
			return all[i].substr
		}
		if all[i].Score != all[j].Score {
			return all[i].Score < all[j].Score
		}
		return all[i].Entity.Name < all[j].Entity.Name
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]Match, len(all))
	for i, r := range all {
		out[i] = r.Match
	}
	return out, nil
}
