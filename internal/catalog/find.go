package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// minFindScore is the lowest Jaro-Winkler similarity [Catalog.Find] reports.
const minFindScore = 0.75

// Match is one [Catalog.Find] result.
type Match struct {
	Kind  string
	ID    string
	Label string
	Score float64
}

// Find ranks every entity label against query. Labels containing the query
// score 1; others are scored by Jaro-Winkler similarity, case-insensitive,
// and dropped below a similarity threshold. Results are ordered by score,
// then id. A limit <= 0 returns every match.
func (c *Catalog) Find(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Match
	consider := func(kind, id, label string) {
		if s := score(q, label); s >= minFindScore {
			out = append(out, Match{Kind: kind, ID: id, Label: label, Score: s})
		}
	}
	for _, rb := range c.rbOrder {
		consider(KindRigidbody, rb.ID(), rb.Label())
	}
	for _, m := range c.colliderOrder {
		consider(KindCollider, m.ID(), m.Label())
	}
	for _, a := range c.AutoColliders() {
		consider(KindAutoCollider, a.ID(), a.Label())
	}

	slices.SortStableFunc(out, func(a, b Match) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(query, label string) float64 {
	l := strings.ToLower(label)
	if strings.Contains(l, query) {
		return 1
	}
	return matchr.JaroWinkler(query, l, false)
}
