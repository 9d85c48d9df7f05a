package output

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// friendCSV is the CSV layout of a friend suggestion. The rating bias is
// table and JSON only.
type friendCSV struct {
	UserID          string `csv:"user_id"`
	FriendID        string `csv:"friend_id"`
	MatchScore      fixed  `csv:"Match score"`
	NumReviews      int    `csv:"Number of reviews"`
	ReviewsInCommon int    `csv:"Number of reviews in common"`
	AverageError    fixed  `csv:"Average absolute stars difference"`
}

type businessCSV struct {
	UserID           string `csv:"user_id"`
	BusinessID       string `csv:"business_id"`
	Relevance        fixed  `csv:"Suggestion relevance"`
	NumReferences    int    `csv:"Number of references"`
	TotalMatchScores fixed  `csv:"Total match scores"`
	BusinessReviews  int    `csv:"Business number of reviews"`
	BusinessAverage  fixed  `csv:"Business average stars"`
	PredictedAverage fixed  `csv:"Predicted business average stars"`
	ReviewerID       string `csv:"reviewer_id"`
	ReviewerStars    tenth  `csv:"Reviewer stars"`
	ReviewerContrib  fixed  `csv:"Reviewer relevance"`
}

func writeFriendCSV(w io.Writer, rows []matcher.FriendRow) error {
	out := make([]friendCSV, len(rows))
	for i, r := range rows {
		out[i] = friendCSV{
			UserID:          r.UserID,
			FriendID:        r.FriendID,
			MatchScore:      fixed(r.MatchScore),
			NumReviews:      r.NumReviews,
			ReviewsInCommon: r.ReviewsInCommon,
			AverageError:    fixed(r.AverageError),
		}
	}
	return writeCSV(w, friendCSV{}, out)
}

func writeBusinessCSV(w io.Writer, rows []matcher.BusinessRow) error {
	out := make([]businessCSV, len(rows))
	for i, r := range rows {
		out[i] = businessCSV{
			UserID:           r.UserID,
			BusinessID:       r.BusinessID,
			Relevance:        fixed(r.Relevance),
			NumReferences:    r.NumReferences,
			TotalMatchScores: fixed(r.TotalMatchScores),
			BusinessReviews:  r.BusinessReviews,
			BusinessAverage:  fixed(r.BusinessAverage),
			PredictedAverage: fixed(r.PredictedAverage),
			ReviewerID:       r.ReviewerID,
			ReviewerStars:    tenth(r.ReviewerStars),
			ReviewerContrib:  fixed(r.ReviewerContrib),
		}
	}
	return writeCSV(w, businessCSV{}, out)
}

// writeCSV always emits the header, even for an empty result set.
func writeCSV[T any](w io.Writer, header T, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(header); err != nil {
		return eris.Wrap(err, "output: csv header")
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "output: csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "output: write csv")
	}
	return nil
}
