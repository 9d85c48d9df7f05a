package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/flab03/ymatch-analysis/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats [user_id]",
	Short: "Show corpus statistics",
	Long: `Display how many reviews were read, how many distinct (business, user)
pairs they collapse to, and how many businesses and users the corpus holds.

With a user id, also show that user's review count, rating bias (average
stars above or below the business averages) and number of common reviewers.`,
	Example: `  ymatch stats
  ymatch stats qjfMBIZpQT9DDtw_BWCopQ`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	RootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	corpus := output.CorpusStats{
		Records:    m.Reviews().RecordCount(),
		Pairs:      m.Reviews().Len(),
		Businesses: m.NumBusinesses(),
		Users:      m.NumUsers(),
	}

	var user *output.UserStats
	if len(args) == 1 {
		id := resolveUser(args[0])
		user = &output.UserStats{UserID: id}
		if delta, ok := m.User(id); ok {
			res, err := m.Match(id)
			if err != nil {
				return err
			}
			user.Reviews = delta.Count
			user.AverageDelta = delta.AverageDelta
			user.Common = len(res.Common)
		}
	}

	_, err = io.WriteString(cmd.OutOrStdout(), output.RenderStats(corpus, user))
	return err
}
