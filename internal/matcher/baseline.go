package matcher

import "github.com/rotisserie/eris"

// BuildBusinessStats computes every business's average rating over its
// distinct reviewers.
func BuildBusinessStats(reviews *ReviewTable) map[string]BusinessStats {
	sums := make(map[string]*BusinessStats)
	for key, review := range reviews.All() {
		s, ok := sums[key.BusinessID]
		if !ok {
			s = &BusinessStats{}
			sums[key.BusinessID] = s
		}
		s.AverageStars += review.AverageStars
		s.Count++
	}

	businesses := make(map[string]BusinessStats, len(sums))
	for id, s := range sums {
		businesses[id] = BusinessStats{
			AverageStars: s.AverageStars / float64(s.Count),
			Count:        s.Count,
		}
	}
	return businesses
}

// BuildUserDeltas computes every user's average deviation from the business
// averages. Every reviewed business must have stats.
func BuildUserDeltas(reviews *ReviewTable, businesses map[string]BusinessStats) (map[string]UserDelta, error) {
	sums := make(map[string]*UserDelta)
	for key, review := range reviews.All() {
		business, ok := businesses[key.BusinessID]
		if !ok {
			return nil, eris.Wrapf(ErrInvariant, "no stats for business %s", key.BusinessID)
		}
		d, ok := sums[key.UserID]
		if !ok {
			d = &UserDelta{}
			sums[key.UserID] = d
		}
		d.AverageDelta += review.AverageStars - business.AverageStars
		d.Count++
	}

	users := make(map[string]UserDelta, len(sums))
	for id, d := range sums {
		users[id] = UserDelta{
			AverageDelta: d.AverageDelta / float64(d.Count),
			Count:        d.Count,
		}
	}
	return users, nil
}
