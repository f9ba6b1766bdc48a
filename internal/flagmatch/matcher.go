package flagmatch

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// EmptyCandidateSetError is returned when matching is attempted against no candidates.
type EmptyCandidateSetError struct {
	Source string // where the candidates were read from, if known
}

func (e *EmptyCandidateSetError) Error() string {
	if e.Source != "" {
		return "no flag candidates found in " + e.Source
	}
	return "no flag candidates to match against"
}

// Is makes every EmptyCandidateSetError match ErrEmptyCandidateSet.
func (e *EmptyCandidateSetError) Is(target error) bool {
	_, ok := target.(*EmptyCandidateSetError)
	return ok
}

// ErrEmptyCandidateSet is the target for errors.Is checks.
var ErrEmptyCandidateSet error = &EmptyCandidateSetError{}

// Candidate is a flag identifier and where its image lives.
type Candidate struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"` // file path or URL
}

// MatchResult is the winning candidate and its score.
type MatchResult struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// CandidateSet is an ordered, non-empty collection of candidates.
// The order is the tie-break order.
type CandidateSet struct {
	items []Candidate
	keys  [][]string // normalized IDs split into code points
	byID  map[string]int
}

// NewCandidateSet builds a set from items, keeping their order.
// Duplicate IDs keep their first occurrence.
func NewCandidateSet(items []Candidate) (*CandidateSet, error) {
	if len(items) == 0 {
		return nil, &EmptyCandidateSetError{}
	}
	s := &CandidateSet{
		items: make([]Candidate, 0, len(items)),
		keys:  make([][]string, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, c := range items {
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.byID[c.ID] = len(s.items)
		s.items = append(s.items, c)
		s.keys = append(s.keys, splitRunes(Normalize(c.ID)))
	}
	return s, nil
}

// CandidatesFromIDs wraps bare identifiers as candidates without a source.
func CandidatesFromIDs(ids ...string) []Candidate {
	out := make([]Candidate, len(ids))
	for i, id := range ids {
		out[i] = Candidate{ID: id}
	}
	return out
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int { return len(s.items) }

// Lookup finds a candidate by exact identifier.
func (s *CandidateSet) Lookup(id string) (Candidate, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return s.items[i], true
}

// Matcher scores queries against a fixed candidate set. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	set *CandidateSet
}

// New returns a Matcher over set.
func New(set *CandidateSet) *Matcher {
	return &Matcher{set: set}
}

// Match returns the candidate most similar to query.
func (m *Matcher) Match(query string) (MatchResult, error) {
	if m.set == nil || m.set.Len() == 0 {
		return MatchResult{}, &EmptyCandidateSetError{}
	}
	i, score := best(query, m.set.items, m.set.keys)
	return MatchResult{Candidate: m.set.items[i], Score: score}, nil
}

// Rank scores every candidate and returns the n best, highest first.
// Equal scores keep candidate order. n <= 0 returns all of them.
func (m *Matcher) Rank(query string, n int) []MatchResult {
	if m.set == nil {
		return nil
	}
	q := splitRunes(Normalize(query))
	out := make([]MatchResult, len(m.set.items))
	for i, c := range m.set.items {
		score := 1.0
		if c.ID != query {
			score = difflib.NewMatcher(q, m.set.keys[i]).Ratio()
		}
		out[i] = MatchResult{Candidate: c, Score: score}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Candidate.ID == query && out[b].Candidate.ID != query
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// FindBestMatch returns the candidate most similar to query and its score.
// Ties go to the earliest candidate.
func FindBestMatch(query string, candidates []string) (string, float64, error) {
	if len(candidates) == 0 {
		return "", 0, &EmptyCandidateSetError{}
	}
	items := CandidatesFromIDs(candidates...)
	keys := make([][]string, len(candidates))
	for i, c := range candidates {
		keys[i] = splitRunes(Normalize(c))
	}
	i, score := best(query, items, keys)
	return candidates[i], score, nil
}

// best returns the index and score of the winning candidate. items must be non-empty.
func best(query string, items []Candidate, keys [][]string) (int, float64) {
	// A byte-identical candidate wins outright, even over an earlier candidate
	// that only matches after normalization.
	for i, c := range items {
		if c.ID == query {
			return i, 1.0
		}
	}

	q := splitRunes(Normalize(query))
	bestIdx, bestScore := -1, -1.0
	for i := range items {
		sm := difflib.NewMatcher(q, keys[i])
		// Only a strictly higher score replaces the leader, so a candidate whose
		// upper bound cannot beat it is skipped.
		if bestIdx >= 0 && (sm.RealQuickRatio() <= bestScore || sm.QuickRatio() <= bestScore) {
			continue
		}
		if r := sm.Ratio(); r > bestScore {
			bestIdx, bestScore = i, r
		}
	}
	return bestIdx, bestScore
}
