package matcher

import (
	"slices"

	"github.com/rotisserie/eris"
)

// ScoredReference is a common reviewer's opinion on one business together
// with the match score that weighted it.
type ScoredReference struct {
	Reference
	MatchScore float64
	Counted    bool // false when the match score was too low to contribute
}

// Explanation details how a single business suggestion was assembled.
type Explanation struct {
	Target     string
	BusinessID string
	Business   BusinessStats
	Suggestion BusinessSuggestion
	References []ScoredReference // highest contrib first; uncounted last
}

// Reviewed reports whether the target already reviewed the business.
func (e *Explanation) Reviewed() bool {
	return e.Suggestion.Remove
}

// Explain lists every common reviewer of a business, counted or not.
func (r *Result) Explain(businessID string) (*Explanation, error) {
	business, ok := r.matcher.businesses[businessID]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "business %s", businessID)
	}

	e := &Explanation{
		Target:     r.Target,
		BusinessID: businessID,
		Business:   business,
	}
	if s, ok := r.Suggestions[businessID]; ok {
		e.Suggestion = *s
	}

	for key, review := range r.matcher.reviews.Business(businessID) {
		cr, ok := r.Common[key.UserID]
		if !ok {
			continue
		}
		score := cr.MatchScore()
		ref := ScoredReference{
			Reference: Reference{
				ReviewerID:    key.UserID,
				ReviewerStars: review.AverageStars,
			},
			MatchScore: score,
		}
		if score > 0 {
			ref.Contrib = (review.AverageStars - business.AverageStars) * score
			ref.Counted = true
		}
		e.References = append(e.References, ref)
	}

	slices.SortStableFunc(e.References, func(a, b ScoredReference) int {
		if a.Counted != b.Counted {
			if a.Counted {
				return -1
			}
			return 1
		}
		if a.Counted {
			return compareDesc(a.Contrib, b.Contrib)
		}
		return compareDesc(a.MatchScore, b.MatchScore)
	})
	return e, nil
}
