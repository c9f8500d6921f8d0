package match

import (
	"sort"

	"parsegen/internal/common"
)

// Default thresholds for suggestions.
const (
	// MinSuggestScore is the lowest similarity reported as a suggestion.
	MinSuggestScore = 0.5
	// MaxSuggestions caps the number of suggestions in a diagnostic.
	MaxSuggestions = 3
)

// Candidate is a name considered for a binding or a suggestion.
type Candidate struct {
	Name string
	// Score is the normalized similarity to the wanted name (0-1).
	Score float64
	// Exact is true when the normalized names are equal.
	Exact bool
}

// CandidateList is a list of candidates, best first after Rank.
type CandidateList []Candidate

// Rank scores every candidate name against want and returns them best first.
// Ties keep the order of names.
func Rank(want string, names []string) CandidateList {
	norm := NormalizeIdent(want)

	list := make(CandidateList, 0, len(names))
	for _, name := range names {
		cn := NormalizeIdent(name)
		list = append(list, Candidate{
			Name:  name,
			Score: Similarity(norm, cn),
			Exact: cn == norm,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})

	return list
}

// Exact returns the candidates whose normalized name equals the wanted one.
func (l CandidateList) Exact() CandidateList {
	var out CandidateList

	for _, c := range l {
		if c.Exact {
			out = append(out, c)
		}
	}

	return out
}

// Names returns candidate names scoring at least minScore, at most limit of
// them (0 means no limit).
func (l CandidateList) Names(minScore float64, limit int) []string {
	var out []string

	for _, c := range l {
		if c.Score < minScore {
			break
		}

		if limit > 0 && len(out) == limit {
			break
		}

		out = append(out, c.Name)
	}

	return out
}

// Suggest returns up to MaxSuggestions names close to want.
func Suggest(want string, names []string) []string {
	return Rank(want, names).Names(MinSuggestScore, MaxSuggestions)
}

// Closest returns the single best suggestion for want, or "".
func Closest(want string, names []string) string {
	best, _ := common.First(Suggest(want, names))

	return best
}
