package output

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// SortKey orders result rows.
type SortKey string

const (
	// SortScore puts the strongest match or most underrated business first.
	SortScore SortKey = "score"
	// SortID orders by friend or business id.
	SortID SortKey = "id"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortScore, SortID:
		return k, nil
	}
	return "", eris.Errorf("unknown sort key %q (want score or id)", s)
}

// SortFriends sorts rows in place. Score ties fall back to friend id.
func SortFriends(rows []matcher.FriendRow, by SortKey) {
	slices.SortStableFunc(rows, func(a, b matcher.FriendRow) int {
		if by == SortScore {
			if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.FriendID, b.FriendID)
	})
}

// SortBusinesses sorts rows in place. Score ties fall back to business id.
func SortBusinesses(rows []matcher.BusinessRow, by SortKey) {
	slices.SortStableFunc(rows, func(a, b matcher.BusinessRow) int {
		if by == SortScore {
			if c := cmp.Compare(b.Relevance, a.Relevance); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.BusinessID, b.BusinessID)
	})
}
