package matcher

// Record is one raw review as delivered by the review source.
type Record struct {
	BusinessID string
	UserID     string
	Stars      float64
}

// ReviewKey identifies one (business, user) pair in the review table.
type ReviewKey struct {
	BusinessID string
	UserID     string
}

// Less orders keys by business id, then user id.
func (k ReviewKey) Less(o ReviewKey) bool {
	if k.BusinessID != o.BusinessID {
		return k.BusinessID < o.BusinessID
	}
	return k.UserID < o.UserID
}

// AggregatedReview is the merged rating of every raw review a user wrote
// for one business.
type AggregatedReview struct {
	AverageStars float64
	Count        int
}

// BusinessStats is the consensus rating of a business.
type BusinessStats struct {
	AverageStars float64
	Count        int // distinct reviewers
}

// UserDelta is a user's average deviation from business consensus.
// Positive values mean the user rates above average.
type UserDelta struct {
	AverageDelta float64
	Count        int
}

// Match score smoothing: every comparison is padded with two phantom shared
// reviews carrying one star of error each.
const (
	smoothingReviews = 2.0
	smoothingError   = 2.0
)

// CommonReviewer accumulates how closely another user's ratings track the
// target user's ratings on the businesses both reviewed.
type CommonReviewer struct {
	TotalError      float64
	ReviewsInCommon int
}

// MatchScore returns the smoothed similarity between the target and this
// reviewer. A reviewer whose average error equals the smoothing ratio scores
// 0; the score tends to -1 as the error grows and is not clamped above.
func (c CommonReviewer) MatchScore() float64 {
	return (float64(c.ReviewsInCommon)+smoothingReviews)/(c.TotalError+smoothingError) - 1.0
}

// AverageError returns the mean absolute star difference on shared businesses.
func (c CommonReviewer) AverageError() float64 {
	if c.ReviewsInCommon == 0 {
		return 0
	}
	return c.TotalError / float64(c.ReviewsInCommon)
}

// Reference is one reviewer's weighted opinion on a business.
type Reference struct {
	ReviewerID    string
	ReviewerStars float64
	Contrib       float64
}

// BusinessSuggestion aggregates the weighted opinions of common reviewers on
// one business.
type BusinessSuggestion struct {
	TotalDelta       float64
	TotalMatchScores float64
	NumReferences    int
	Remove           bool // target already reviewed the business
	PositiveRef      Reference
	NegativeRef      Reference
}

// Evidence returns the reference that best justifies the suggestion: the
// strongest booster of an underrated business, or the strongest detractor of
// an overrated one.
func (s *BusinessSuggestion) Evidence() Reference {
	if s.TotalDelta >= 0 {
		return s.PositiveRef
	}
	return s.NegativeRef
}

// PredictedStars returns the rating the target is expected to give.
func (s *BusinessSuggestion) PredictedStars(businessAverage float64) float64 {
	if s.TotalMatchScores == 0 {
		return businessAverage
	}
	return businessAverage + s.TotalDelta/s.TotalMatchScores
}
