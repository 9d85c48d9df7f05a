package matcher

import (
	"iter"
	"math"
	"slices"

	"github.com/rotisserie/eris"
)

// ReviewTable is the canonical review table: exactly one AggregatedReview per
// (business, user) pair. It is immutable once built.
type ReviewTable struct {
	reviews map[ReviewKey]AggregatedReview
	keys    []ReviewKey
	records int
}

// Len returns the number of distinct (business, user) pairs.
func (t *ReviewTable) Len() int {
	return len(t.keys)
}

// RecordCount returns the number of raw records merged into the table.
func (t *ReviewTable) RecordCount() int {
	return t.records
}

// Get returns the aggregated review for a key.
func (t *ReviewTable) Get(key ReviewKey) (AggregatedReview, bool) {
	r, ok := t.reviews[key]
	return r, ok
}

// All iterates the table in ReviewKey order.
func (t *ReviewTable) All() iter.Seq2[ReviewKey, AggregatedReview] {
	return func(yield func(ReviewKey, AggregatedReview) bool) {
		for _, k := range t.keys {
			if !yield(k, t.reviews[k]) {
				return
			}
		}
	}
}

// Business iterates the reviews of one business in user id order.
func (t *ReviewTable) Business(businessID string) iter.Seq2[ReviewKey, AggregatedReview] {
	return func(yield func(ReviewKey, AggregatedReview) bool) {
		start, _ := slices.BinarySearchFunc(t.keys, businessID, func(k ReviewKey, id string) int {
			if k.BusinessID < id {
				return -1
			}
			if k.BusinessID > id {
				return 1
			}
			return 0
		})
		for _, k := range t.keys[start:] {
			if k.BusinessID != businessID {
				return
			}
			if !yield(k, t.reviews[k]) {
				return
			}
		}
	}
}

// Aggregator merges raw review records into a ReviewTable. Ratings are summed
// as records arrive and divided once in Finalize.
type Aggregator struct {
	sums      map[ReviewKey]*AggregatedReview
	records   int
	finalized bool
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{sums: make(map[ReviewKey]*AggregatedReview)}
}

// Add folds one raw record into the running sums.
func (a *Aggregator) Add(r Record) error {
	if a.finalized {
		return eris.Wrap(ErrInvariant, "aggregator: add after finalize")
	}
	if r.BusinessID == "" {
		return eris.Wrap(ErrInvalidRecord, "missing business_id")
	}
	if r.UserID == "" {
		return eris.Wrap(ErrInvalidRecord, "missing user_id")
	}
	if math.IsNaN(r.Stars) || math.IsInf(r.Stars, 0) {
		return eris.Wrapf(ErrInvalidRecord, "stars is not a finite number: %v", r.Stars)
	}

	key := ReviewKey{BusinessID: r.BusinessID, UserID: r.UserID}
	sum, ok := a.sums[key]
	if !ok {
		sum = &AggregatedReview{}
		a.sums[key] = sum
	}
	// Temporarily a sum, not an average.
	sum.AverageStars += r.Stars
	sum.Count++
	a.records++
	return nil
}

// Records returns the number of raw records added so far.
func (a *Aggregator) Records() int {
	return a.records
}

// Finalize divides every sum by its count and returns the finished table.
// The Aggregator cannot be used afterwards.
func (a *Aggregator) Finalize() *ReviewTable {
	t := &ReviewTable{
		reviews: make(map[ReviewKey]AggregatedReview, len(a.sums)),
		keys:    make([]ReviewKey, 0, len(a.sums)),
		records: a.records,
	}
	for k, sum := range a.sums {
		t.reviews[k] = AggregatedReview{
			AverageStars: sum.AverageStars / float64(sum.Count),
			Count:        sum.Count,
		}
		t.keys = append(t.keys, k)
	}
	slices.SortFunc(t.keys, func(x, y ReviewKey) int {
		switch {
		case x.Less(y):
			return -1
		case y.Less(x):
			return 1
		}
		return 0
	})

	a.sums = nil
	a.finalized = true
	return t
}

// Aggregate builds a ReviewTable from an in-memory slice of records.
func Aggregate(records []Record) (*ReviewTable, error) {
	agg := NewAggregator()
	for i, r := range records {
		if err := agg.Add(r); err != nil {
			return nil, eris.Wrapf(err, "record %d", i)
		}
	}
	return agg.Finalize(), nil
}
