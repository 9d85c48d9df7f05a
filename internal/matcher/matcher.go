package matcher

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

// Matcher holds the target-independent baselines derived from one review
// table. It is built once per run and shared read-only by every Match call.
type Matcher struct {
	reviews    *ReviewTable
	businesses map[string]BusinessStats
	users      map[string]UserDelta
}

// New derives business averages and user deltas from the review table.
func New(reviews *ReviewTable) (*Matcher, error) {
	businesses := BuildBusinessStats(reviews)
	users, err := BuildUserDeltas(reviews, businesses)
	if err != nil {
		return nil, eris.Wrap(err, "build user deltas")
	}
	return &Matcher{reviews: reviews, businesses: businesses, users: users}, nil
}

// Reviews returns the underlying review table.
func (m *Matcher) Reviews() *ReviewTable {
	return m.reviews
}

// Business returns the stats of one business.
func (m *Matcher) Business(id string) (BusinessStats, bool) {
	s, ok := m.businesses[id]
	return s, ok
}

// User returns the rating bias of one user.
func (m *Matcher) User(id string) (UserDelta, bool) {
	d, ok := m.users[id]
	return d, ok
}

// NumBusinesses returns the number of distinct reviewed businesses.
func (m *Matcher) NumBusinesses() int {
	return len(m.businesses)
}

// NumUsers returns the number of distinct reviewers.
func (m *Matcher) NumUsers() int {
	return len(m.users)
}

// Match runs the target-specific stages for one user. A user without reviews
// yields an empty Result, not an error.
func (m *Matcher) Match(target string) (*Result, error) {
	common := FindCommonReviewers(m.reviews, target)
	suggestions, err := SuggestBusinesses(m.reviews, target, common, m.businesses)
	if err != nil {
		return nil, eris.Wrapf(err, "suggest businesses for %s", target)
	}
	return &Result{
		Target:      target,
		Common:      common,
		Suggestions: suggestions,
		matcher:     m,
	}, nil
}

// Result is the read-only outcome of matching one target user.
type Result struct {
	Target      string
	Common      map[string]CommonReviewer
	Suggestions map[string]*BusinessSuggestion

	matcher *Matcher
}

// FriendRow is one friend suggestion as presented to the user.
type FriendRow struct {
	UserID          string  `json:"user_id"`
	FriendID        string  `json:"friend_id"`
	MatchScore      float64 `json:"match_score"`
	NumReviews      int     `json:"num_reviews"`
	AverageDelta    float64 `json:"average_delta"`
	ReviewsInCommon int     `json:"reviews_in_common"`
	AverageError    float64 `json:"average_error"`
}

// BusinessRow is one business suggestion as presented to the user.
type BusinessRow struct {
	UserID           string  `json:"user_id"`
	BusinessID       string  `json:"business_id"`
	Relevance        float64 `json:"suggestion_relevance"`
	NumReferences    int     `json:"num_references"`
	TotalMatchScores float64 `json:"total_match_scores"`
	BusinessReviews  int     `json:"business_reviews"`
	BusinessAverage  float64 `json:"business_average"`
	PredictedAverage float64 `json:"predicted_average"`
	ReviewerID       string  `json:"reviewer_id"`
	ReviewerStars    float64 `json:"reviewer_stars"`
	ReviewerContrib  float64 `json:"reviewer_contrib"`
}

// FriendRows returns one row per common reviewer, ordered by friend id.
func (r *Result) FriendRows() ([]FriendRow, error) {
	ids := sortedKeys(r.Common)
	rows := make([]FriendRow, 0, len(ids))
	for _, id := range ids {
		cr := r.Common[id]
		user, ok := r.matcher.users[id]
		if !ok {
			return nil, eris.Wrapf(ErrInvariant, "no delta for common reviewer %s", id)
		}
		rows = append(rows, FriendRow{
			UserID:          r.Target,
			FriendID:        id,
			MatchScore:      cr.MatchScore(),
			NumReviews:      user.Count,
			AverageDelta:    user.AverageDelta,
			ReviewsInCommon: cr.ReviewsInCommon,
			AverageError:    cr.AverageError(),
		})
	}
	return rows, nil
}

// BusinessRows returns one row per suggested business the target has not
// reviewed, ordered by business id.
func (r *Result) BusinessRows() ([]BusinessRow, error) {
	ids := sortedKeys(r.Suggestions)
	rows := make([]BusinessRow, 0, len(ids))
	for _, id := range ids {
		s := r.Suggestions[id]
		if s.Remove {
			continue
		}
		business, ok := r.matcher.businesses[id]
		if !ok {
			return nil, eris.Wrapf(ErrInvariant, "no stats for suggested business %s", id)
		}
		ref := s.Evidence()
		rows = append(rows, BusinessRow{
			UserID:           r.Target,
			BusinessID:       id,
			Relevance:        s.TotalDelta,
			NumReferences:    s.NumReferences,
			TotalMatchScores: s.TotalMatchScores,
			BusinessReviews:  business.Count,
			BusinessAverage:  business.AverageStars,
			PredictedAverage: s.PredictedStars(business.AverageStars),
			ReviewerID:       ref.ReviewerID,
			ReviewerStars:    ref.ReviewerStars,
			ReviewerContrib:  ref.Contrib,
		})
	}
	return rows, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func compareDesc(a, b float64) int {
	return cmp.Compare(b, a)
}
