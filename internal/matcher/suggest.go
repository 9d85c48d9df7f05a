package matcher

import "github.com/rotisserie/eris"

// SuggestBusinesses folds the opinions of positively matched common reviewers
// into one suggestion per business. Businesses the target already reviewed
// are present with Remove set and must not be shown.
func SuggestBusinesses(
	reviews *ReviewTable,
	target string,
	common map[string]CommonReviewer,
	businesses map[string]BusinessStats,
) (map[string]*BusinessSuggestion, error) {
	suggestions := make(map[string]*BusinessSuggestion)
	suggestion := func(businessID string) *BusinessSuggestion {
		s, ok := suggestions[businessID]
		if !ok {
			s = &BusinessSuggestion{}
			suggestions[businessID] = s
		}
		return s
	}

	for key, review := range reviews.All() {
		if key.UserID == target {
			suggestion(key.BusinessID).Remove = true
			continue
		}

		cr, ok := common[key.UserID]
		if !ok {
			continue
		}
		matchScore := cr.MatchScore()
		if matchScore <= 0 {
			continue
		}

		business, ok := businesses[key.BusinessID]
		if !ok {
			return nil, eris.Wrapf(ErrInvariant, "no stats for business %s", key.BusinessID)
		}

		reviewerDelta := review.AverageStars - business.AverageStars
		contrib := reviewerDelta * matchScore

		s := suggestion(key.BusinessID)
		s.TotalDelta += contrib
		s.TotalMatchScores += matchScore
		s.NumReferences++

		// Strict comparisons: ties keep the first reviewer in key order.
		if contrib > s.PositiveRef.Contrib {
			s.PositiveRef = Reference{ReviewerID: key.UserID, ReviewerStars: review.AverageStars, Contrib: contrib}
		}
		if contrib < s.NegativeRef.Contrib {
			s.NegativeRef = Reference{ReviewerID: key.UserID, ReviewerStars: review.AverageStars, Contrib: contrib}
		}
	}
	return suggestions, nil
}
