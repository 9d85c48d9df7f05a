// Package output renders ymatch results for the terminal and for other tools.
//
// This package includes:
//   - Table rendering for friend and business suggestions, explanations,
//     corpus statistics and saved runs
//   - CSV and JSON writers for the two result sets
//   - Progress bars and spinners for reading large corpora
//
// Tables use ANSI color only when stdout is a terminal and NO_COLOR is unset.
// Progress indicators write to stderr and are safe for concurrent use.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/flab03/ymatch-analysis/internal/matcher"
	"github.com/flab03/ymatch-analysis/internal/store"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// idWidth fits a 22-character Yelp id.
const idWidth = 22

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// signColor picks green for positive, red for negative and gray for zero.
func signColor(v float64) string {
	switch {
	case v > 0:
		return colorGreen
	case v < 0:
		return colorRed
	default:
		return colorGray
	}
}

// RenderFriendTable renders friend suggestions. Rows are printed in the
// order given.
func RenderFriendTable(rows []matcher.FriendRow) string {
	if len(rows) == 0 {
		return "No friend suggestions found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %9s %9s %8s %9s %9s\n", idWidth,
		"Friend", "Score", "Reviews", "Common", "Avg Err", "Bias"))
	sb.WriteString(strings.Repeat("─", idWidth+50))
	sb.WriteString("\n")

	for _, r := range rows {
		bias := fmt.Sprintf("%+9.3f", r.AverageDelta)
		sb.WriteString(fmt.Sprintf("%-*s %9.3f %9s %8s %9.3f %s\n", idWidth,
			truncate(r.FriendID, idWidth),
			r.MatchScore,
			humanize.Comma(int64(r.NumReviews)),
			humanize.Comma(int64(r.ReviewsInCommon)),
			r.AverageError,
			colorize(colorGray, bias)))
	}
	return sb.String()
}

// RenderBusinessTable renders business suggestions. Rows are printed in the
// order given.
func RenderBusinessTable(rows []matcher.BusinessRow) string {
	if len(rows) == 0 {
		return "No business suggestions found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %10s %6s %8s %5s %9s  %-*s %5s %8s\n", idWidth,
		"Business", "Relevance", "Refs", "Reviews", "Avg", "Predicted", idWidth, "Reviewer", "Stars", "Contrib"))
	sb.WriteString(strings.Repeat("─", 2*idWidth+63))
	sb.WriteString("\n")

	for _, r := range rows {
		relevance := fmt.Sprintf("%+10.3f", r.Relevance)
		sb.WriteString(fmt.Sprintf("%-*s %s %6s %8s %5.2f %9.2f  %-*s %5.1f %+8.3f\n", idWidth,
			truncate(r.BusinessID, idWidth),
			colorize(signColor(r.Relevance), relevance),
			humanize.Comma(int64(r.NumReferences)),
			humanize.Comma(int64(r.BusinessReviews)),
			r.BusinessAverage,
			r.PredictedAverage,
			idWidth, truncate(r.ReviewerID, idWidth),
			r.ReviewerStars,
			r.ReviewerContrib))
	}
	return sb.String()
}

// RenderExplanation renders how one business suggestion was assembled.
func RenderExplanation(e *matcher.Explanation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Business: %s\n", e.BusinessID))
	sb.WriteString(fmt.Sprintf("Reviews:  %s, average %.2f stars\n",
		humanize.Comma(int64(e.Business.Count)), e.Business.AverageStars))

	if e.Reviewed() {
		sb.WriteString(colorize(colorYellow, fmt.Sprintf("%s already reviewed this business; it is never suggested.\n", e.Target)))
	}

	s := e.Suggestion
	if s.NumReferences == 0 {
		sb.WriteString("No common reviewer with a positive match score reviewed it.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Relevance: %s from %d reference(s), match score sum %.3f\n",
			colorize(signColor(s.TotalDelta), fmt.Sprintf("%+.3f", s.TotalDelta)),
			s.NumReferences, s.TotalMatchScores))
		sb.WriteString(fmt.Sprintf("Predicted: %.2f stars for %s\n",
			s.PredictedStars(e.Business.AverageStars), e.Target))
	}

	if len(e.References) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-*s %5s %9s %9s\n", idWidth, "Reviewer", "Stars", "Score", "Contrib"))
	sb.WriteString(strings.Repeat("─", idWidth+26))
	sb.WriteString("\n")
	for _, ref := range e.References {
		contrib := "—"
		if ref.Counted {
			contrib = fmt.Sprintf("%+.3f", ref.Contrib)
		}
		line := fmt.Sprintf("%-*s %5.1f %9.3f %9s", idWidth,
			truncate(ref.ReviewerID, idWidth), ref.ReviewerStars, ref.MatchScore, contrib)
		if !ref.Counted {
			line = colorize(colorGray, line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// CorpusStats summarizes a loaded review corpus.
type CorpusStats struct {
	Records    int // review lines read
	Pairs      int // distinct (business, user) pairs
	Businesses int
	Users      int
}

// UserStats summarizes one user within the corpus.
type UserStats struct {
	UserID       string
	Reviews      int
	AverageDelta float64
	Common       int // other users sharing at least one business
}

// RenderStats renders corpus statistics, followed by one user's figures
// when user is non-nil.
func RenderStats(c CorpusStats, user *UserStats) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Reviews read:     %s\n", humanize.Comma(int64(c.Records))))
	sb.WriteString(fmt.Sprintf("Distinct pairs:   %s\n", humanize.Comma(int64(c.Pairs))))
	sb.WriteString(fmt.Sprintf("Duplicates:       %s\n", humanize.Comma(int64(c.Records-c.Pairs))))
	sb.WriteString(fmt.Sprintf("Businesses:       %s\n", humanize.Comma(int64(c.Businesses))))
	sb.WriteString(fmt.Sprintf("Users:            %s\n", humanize.Comma(int64(c.Users))))

	if user == nil {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("User:             %s\n", user.UserID))
	if user.Reviews == 0 {
		sb.WriteString("No reviews found for this user.\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Reviews:          %s\n", humanize.Comma(int64(user.Reviews))))
	sb.WriteString(fmt.Sprintf("Rating bias:      %s stars vs business average\n",
		colorize(signColor(user.AverageDelta), fmt.Sprintf("%+.3f", user.AverageDelta))))
	sb.WriteString(fmt.Sprintf("Common reviewers: %s\n", humanize.Comma(int64(user.Common))))
	return sb.String()
}

// RenderRunTable renders saved runs.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No saved runs found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-36s %-*s %-18s %6s  %-16s %s\n",
		"Run", idWidth, "User", "Action", "Rows", "Saved", "Input"))
	sb.WriteString(strings.Repeat("─", 120))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-36s %-*s %-18s %6s  %-16s %s\n",
			run.ID,
			idWidth, truncate(run.TargetID, idWidth),
			run.Action,
			humanize.Comma(int64(run.RowCount)),
			humanize.Time(run.CreatedAt),
			run.InputPath))
	}
	return sb.String()
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
