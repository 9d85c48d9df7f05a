package app

import (
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/flab03/ymatch-analysis/internal/matcher"
	"github.com/flab03/ymatch-analysis/internal/output"
)

var explainCmd = &cobra.Command{
	Use:   "explain <user_id> <business_id>",
	Short: "Show how a business suggestion was assembled",
	Long: `Break down the suggestion of one business for one user: the business
average, the relevance and predicted stars, and every common reviewer of the
business with their stars, match score and contribution.

Reviewers with a match score of zero or less are listed but do not count.`,
	Example: `  ymatch explain qjfMBIZpQT9DDtw_BWCopQ 4bEjOyTaDG24SY5TxsaUNQ`,
	Args:    cobra.ExactArgs(2),
	RunE:    runExplain,
}

func init() {
	RootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	target, businessID := resolveUser(args[0]), args[1]

	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	res, err := m.Match(target)
	if err != nil {
		return err
	}

	e, err := res.Explain(businessID)
	if errors.Is(err, matcher.ErrNotFound) {
		return eris.Errorf("business not found: %s", businessID)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), output.RenderExplanation(e))
	return err
}
