// Package matcher finds users whose ratings track a target user's ratings
// and turns their opinions into friend and business suggestions.
//
// The pipeline runs in fixed order, each stage reading only the output of
// earlier ones:
//
//	reviews := agg.Finalize()          // one AggregatedReview per (business, user)
//	m, err := matcher.New(reviews)     // business averages, user deltas
//	res, err := m.Match("user-id")     // common reviewers, business suggestions
//	rows, err := res.BusinessRows()
package matcher
