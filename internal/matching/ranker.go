// Package matching selects and pairs reports and videos into hybrid content
// bundles and maintains the historical report collection used for
// similarity lookups.
package matching

import (
	"sort"
	"sync"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// CandidateRanker ranks historical reports against a set of query tags.
// The keyword implementation below is a stand-in for embedding similarity
// search; swapping in a real vector index only requires another
// implementation of this interface.
type CandidateRanker interface {
	// AddToHistory appends reports to the historical collection.
	AddToHistory(reports []*types.ResearchReport)
	// RankCandidates returns reports with a positive match score, best first.
	// Ties keep encounter order.
	RankCandidates(queryTags []string) []*types.ResearchReport
}

// KeywordRanker scores reports by tag-set intersection size. It is NOT a
// production ranking algorithm; it mocks vector similarity with keyword
// overlap so the matcher's control flow can be exercised without an
// embedding store.
type KeywordRanker struct {
	mu      sync.RWMutex
	history []*types.ResearchReport
}

// NewKeywordRanker returns an empty ranker.
func NewKeywordRanker() *KeywordRanker {
	return &KeywordRanker{}
}

// AddToHistory appends reports without deduplication. Repeated refreshes may
// insert the same report twice; the collection is append-only on purpose,
// mirroring the audit log philosophy.
func (r *KeywordRanker) AddToHistory(reports []*types.ResearchReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, reports...)
}

// HistorySize returns the number of entries in the historical collection.
func (r *KeywordRanker) HistorySize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// RankCandidates scores every historical report by the size of its tag
// intersection with queryTags and returns those with score > 0, highest
// first. The sort is stable so equal scores keep first-seen order.
func (r *KeywordRanker) RankCandidates(queryTags []string) []*types.ResearchReport {
	query := make(map[string]struct{}, len(queryTags))
	for _, tag := range queryTags {
		query[tag] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		report *types.ResearchReport
		score  int
	}

	candidates := make([]scored, 0, len(r.history))
	for _, report := range r.history {
		score := overlapCount(report.Tags, query)
		if score > 0 {
			candidates = append(candidates, scored{report: report, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	ranked := make([]*types.ResearchReport, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.report
	}
	return ranked
}

// overlapCount counts distinct tags present in the query set.
func overlapCount(tags []string, query map[string]struct{}) int {
	seen := make(map[string]struct{}, len(tags))
	count := 0
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := query[tag]; ok {
			count++
		}
	}
	return count
}
