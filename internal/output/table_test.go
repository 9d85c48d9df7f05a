package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flab03/ymatch-analysis/internal/matcher"
	"github.com/flab03/ymatch-analysis/internal/store"
)

var (
	friendRows = []matcher.FriendRow{
		{UserID: "T", FriendID: "A", MatchScore: 0.5, NumReviews: 3, AverageDelta: -0.25, ReviewsInCommon: 1, AverageError: 1},
		{UserID: "T", FriendID: "B", MatchScore: 2, NumReviews: 1234, AverageDelta: 0.5, ReviewsInCommon: 2, AverageError: 0},
	}
	businessRows = []matcher.BusinessRow{
		{UserID: "T", BusinessID: "B1", Relevance: -0.75, NumReferences: 1, TotalMatchScores: 1,
			BusinessReviews: 2, BusinessAverage: 3.5, PredictedAverage: 2.75, ReviewerID: "A", ReviewerStars: 3, ReviewerContrib: -0.75},
		{UserID: "T", BusinessID: "B2", Relevance: 1.5, NumReferences: 2, TotalMatchScores: 3,
			BusinessReviews: 4, BusinessAverage: 4, PredictedAverage: 4.5, ReviewerID: "B", ReviewerStars: 4.5, ReviewerContrib: 1},
	}
)

func TestRenderFriendTable(t *testing.T) {
	assert.Equal(t, "No friend suggestions found.\n", RenderFriendTable(nil))

	out := RenderFriendTable(friendRows)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Friend")
	assert.True(t, strings.HasPrefix(lines[2], "A "))
	assert.Contains(t, lines[3], "1,234")
	assert.Contains(t, lines[3], "2.000")
	assert.Contains(t, lines[2], "-0.250")
}

func TestRenderBusinessTable(t *testing.T) {
	assert.Equal(t, "No business suggestions found.\n", RenderBusinessTable(nil))

	out := RenderBusinessTable(businessRows)
	assert.Contains(t, out, "Relevance")
	assert.Contains(t, out, "-0.750")
	assert.Contains(t, out, "+1.500")
	assert.Contains(t, out, "4.50")
}

func TestRenderExplanation(t *testing.T) {
	e := &matcher.Explanation{
		Target:     "T",
		BusinessID: "B9",
		Business:   matcher.BusinessStats{AverageStars: 4, Count: 3},
		Suggestion: matcher.BusinessSuggestion{TotalDelta: 1, TotalMatchScores: 2, NumReferences: 1},
		References: []matcher.ScoredReference{
			{Reference: matcher.Reference{ReviewerID: "A", ReviewerStars: 4.5, Contrib: 1}, MatchScore: 2, Counted: true},
			{Reference: matcher.Reference{ReviewerID: "C", ReviewerStars: 1}, MatchScore: 0},
		},
	}

	out := RenderExplanation(e)
	assert.Contains(t, out, "Business: B9")
	assert.Contains(t, out, "+1.000 from 1 reference(s)")
	assert.Contains(t, out, "Predicted: 4.50 stars for T")
	assert.Contains(t, out, "—")
	assert.NotContains(t, out, "already reviewed")

	e.Suggestion = matcher.BusinessSuggestion{Remove: true}
	e.References = nil
	out = RenderExplanation(e)
	assert.Contains(t, out, "already reviewed")
	assert.Contains(t, out, "No common reviewer")
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(CorpusStats{Records: 1500, Pairs: 1400, Businesses: 10, Users: 20}, nil)
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "Duplicates:       100")
	assert.NotContains(t, out, "User:")

	out = RenderStats(CorpusStats{}, &UserStats{UserID: "T", Reviews: 4, AverageDelta: 0.5, Common: 3})
	assert.Contains(t, out, "User:             T")
	assert.Contains(t, out, "+0.500")

	out = RenderStats(CorpusStats{}, &UserStats{UserID: "nobody"})
	assert.Contains(t, out, "No reviews found")
}

func TestRenderRunTable(t *testing.T) {
	assert.Equal(t, "No saved runs found.\n", RenderRunTable(nil))

	out := RenderRunTable([]*store.Run{{
		ID: "6f1c", TargetID: "T", Action: store.ActionFriends, InputPath: "in.json.gz",
		RowCount: 12, CreatedAt: time.Now().Add(-2 * time.Hour),
	}})
	assert.Contains(t, out, "suggest_friends")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "in.json.gz")
}

func TestWriteFriends_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFriends(&buf, friendRows, FormatCSV))

	want := "user_id,friend_id,Match score,Number of reviews,Number of reviews in common,Average absolute stars difference\n" +
		"T,A,0.500000,3,1,1.000000\n" +
		"T,B,2.000000,1234,2,0.000000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteBusinesses_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBusinesses(&buf, businessRows[:1], FormatCSV))

	want := "user_id,business_id,Suggestion relevance,Number of references,Total match scores," +
		"Business number of reviews,Business average stars,Predicted business average stars," +
		"reviewer_id,Reviewer stars,Reviewer relevance\n" +
		"T,B1,-0.750000,1,1.000000,2,3.500000,2.750000,A,3.0,-0.750000\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFriends(&buf, nil, FormatCSV))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, strings.HasPrefix(buf.String(), "user_id,friend_id,"))

	buf.Reset()
	require.NoError(t, WriteBusinesses(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteBusinesses(&buf, nil, FormatTable))
	assert.Equal(t, "No business suggestions found.\n", buf.String())
}

func TestWriteFriends_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFriends(&buf, friendRows[:1], FormatJSON))
	assert.JSONEq(t, `[{"user_id":"T","friend_id":"A","match_score":0.5,"num_reviews":3,
		"average_delta":-0.25,"reviews_in_common":1,"average_error":1}]`, buf.String())
}

func TestParseFormatAndSortKey(t *testing.T) {
	for _, s := range []string{"table", "csv", "json"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	k, err := ParseSortKey("id")
	require.NoError(t, err)
	assert.Equal(t, SortID, k)
	_, err = ParseSortKey("stars")
	assert.Error(t, err)
}

func TestSortRows(t *testing.T) {
	friends := []matcher.FriendRow{
		{FriendID: "C", MatchScore: 1},
		{FriendID: "A", MatchScore: 1},
		{FriendID: "B", MatchScore: 3},
	}
	SortFriends(friends, SortScore)
	assert.Equal(t, []string{"B", "A", "C"}, []string{friends[0].FriendID, friends[1].FriendID, friends[2].FriendID})
	SortFriends(friends, SortID)
	assert.Equal(t, "A", friends[0].FriendID)

	businesses := append([]matcher.BusinessRow(nil), businessRows...)
	SortBusinesses(businesses, SortScore)
	assert.Equal(t, "B2", businesses[0].BusinessID)
	SortBusinesses(businesses, SortID)
	assert.Equal(t, "B1", businesses[0].BusinessID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
}
