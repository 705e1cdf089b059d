package services

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// Scoring constants. Tunable, but the monotonicity they establish is a
// contract: more query-term hits never lower a score, and older content
// never outranks an equally-scored newer item.
const (
	exactPhraseBonus  = 10.0
	perTermBonus      = 2.0
	titleTermBonus    = 5.0
	recentWeekBonus   = 2.0
	recentMonthBonus  = 1.0
	engineSignalBonus = 5.0
)

// Scorer merges native and fallback signals into one comparable score
// per result and establishes the total result order.
type Scorer struct {
	cfg driven.ConfigSource
	now func() time.Time
}

// NewScorer creates a scorer.
func NewScorer(cfg driven.ConfigSource) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// Score converts candidates from all types into ordered SearchResults.
// The ordering is total and deterministic: score descending, then
// updatedAt descending, then id ascending.
func (s *Scorer) Score(candidates []driven.Candidate, plan *domain.SearchPlan) []domain.SearchResult {
	cfg := s.cfg.Config()
	now := s.now()

	// Engine signals arrive on incomparable scales (bm25 rank vs
	// substring hit counts), so each is min-max normalised to [0,1]
	// within its own strategy and type before blending.
	engineNorm := normaliseEngineSignals(candidates)

	terms := compileTerms(plan.Tokens)
	phrase := strings.ToLower(plan.Sanitised)

	results := make([]domain.SearchResult, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		entry := c.Entry

		// Weighted lowercase concatenation: title first, body, tags.
		concat := entry.NormTitle + " " + entry.NormBody + " " + entry.NormTags

		score := 0.0
		if phrase != "" && strings.Contains(concat, phrase) {
			score += exactPhraseBonus
		}
		for _, term := range terms {
			hits := len(term.re.FindAllStringIndex(concat, -1))
			score += perTermBonus * float64(hits)
			if term.re.MatchString(entry.NormTitle) {
				score += titleTermBonus
			}
		}

		score *= cfg.TypeWeight(entry.Type)

		switch {
		case now.Sub(entry.UpdatedAt) <= 7*24*time.Hour:
			score += recentWeekBonus
		case now.Sub(entry.UpdatedAt) <= 30*24*time.Hour:
			score += recentMonthBonus
		}

		score += engineSignalBonus * engineNorm[i]

		results = append(results, domain.SearchResult{
			ID:          entry.ID,
			Type:        entry.Type,
			Title:       entry.Title,
			OwnerID:     entry.OwnerID,
			WorkspaceID: entry.WorkspaceID,
			Visibility:  entry.Visibility,
			Score:       score,
			Highlights:  c.Snippets,
			CreatedAt:   entry.CreatedAt,
			UpdatedAt:   entry.UpdatedAt,
		})
	}

	if plan.SortBy == domain.SortByDate {
		sort.SliceStable(results, func(i, j int) bool {
			if !results[i].UpdatedAt.Equal(results[j].UpdatedAt) {
				return results[i].UpdatedAt.After(results[j].UpdatedAt)
			}
			return results[i].ID < results[j].ID
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Score != results[j].Score {
				return results[i].Score > results[j].Score
			}
			if !results[i].UpdatedAt.Equal(results[j].UpdatedAt) {
				return results[i].UpdatedAt.After(results[j].UpdatedAt)
			}
			return results[i].ID < results[j].ID
		})
	}

	return results
}

// compiledTerm pairs a token with its whole-word matcher.
type compiledTerm struct {
	token string
	re    *regexp.Regexp
}

// compileTerms builds whole-word matchers for each query token.
func compileTerms(tokens []string) []compiledTerm {
	terms := make([]compiledTerm, 0, len(tokens))
	for _, tok := range tokens {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(tok) + `\b`)
		if err != nil {
			continue
		}
		terms = append(terms, compiledTerm{token: tok, re: re})
	}
	return terms
}

// normaliseEngineSignals min-max normalises each candidate's raw engine
// signal within its (strategy, type) group, returning one value in
// [0,1] per candidate. A group with a single flat signal maps to 1.
func normaliseEngineSignals(candidates []driven.Candidate) []float64 {
	type groupKey struct {
		strategy driven.Strategy
		t        domain.ContentType
	}

	raw := make([]float64, len(candidates))
	mins := make(map[groupKey]float64)
	maxs := make(map[groupKey]float64)

	for i := range candidates {
		c := &candidates[i]
		v := c.Rank
		if c.Strategy == driven.StrategyFallback {
			for _, hits := range c.FieldHits {
				v += float64(hits)
			}
		}
		raw[i] = v

		k := groupKey{c.Strategy, c.Entry.Type}
		if cur, ok := mins[k]; !ok || v < cur {
			mins[k] = v
		}
		if cur, ok := maxs[k]; !ok || v > cur {
			maxs[k] = v
		}
	}

	norm := make([]float64, len(candidates))
	for i := range candidates {
		k := groupKey{candidates[i].Strategy, candidates[i].Entry.Type}
		lo, hi := mins[k], maxs[k]
		switch {
		case hi > lo:
			norm[i] = (raw[i] - lo) / (hi - lo)
		case raw[i] > 0:
			norm[i] = 1.0
		default:
			norm[i] = 0.0
		}
	}
	return norm
}
