package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the review corpus",
	Long: `Read the whole corpus, validate every record and build the baselines
without emitting results. The first malformed line is reported with its line
number and the command exits non-zero.`,
	Example: `  ymatch check --input yelp_academic_dataset_review.json.gz
  zcat reviews.json.gz | ymatch check --input -`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	table := m.Reviews()
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s reviews, %s pairs, %s businesses, %s users\n",
		humanize.Comma(int64(table.RecordCount())),
		humanize.Comma(int64(table.Len())),
		humanize.Comma(int64(m.NumBusinesses())),
		humanize.Comma(int64(m.NumUsers())))
	return nil
}
