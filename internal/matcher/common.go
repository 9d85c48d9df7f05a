package matcher

import "math"

// FindCommonReviewers compares target against every user who reviewed at
// least one business target also reviewed. The target never appears in the
// result, and users with nothing in common are absent rather than neutral.
func FindCommonReviewers(reviews *ReviewTable, target string) map[string]CommonReviewer {
	// business id -> target's stars
	reviewed := make(map[string]float64)
	for key, review := range reviews.All() {
		if key.UserID == target {
			reviewed[key.BusinessID] = review.AverageStars
		}
	}

	common := make(map[string]CommonReviewer)
	if len(reviewed) == 0 {
		return common
	}

	for key, review := range reviews.All() {
		targetStars, ok := reviewed[key.BusinessID]
		if !ok || key.UserID == target {
			continue
		}
		cr := common[key.UserID]
		cr.TotalError += math.Abs(targetStars - review.AverageStars)
		cr.ReviewsInCommon++
		common[key.UserID] = cr
	}
	return common
}
