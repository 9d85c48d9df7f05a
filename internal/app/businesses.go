package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	businessesFlags resultFlags

	businessesCmd = &cobra.Command{
		Use:   "businesses <user_id>",
		Short: "Suggest businesses rated away from their average by matched users",
		Long: `Suggest businesses the target has not reviewed.

Every positively matched user contributes (their stars - business average)
weighted by their match score. A positive relevance marks an underrated
business, a negative one an overrated business. The predicted stars are the
business average shifted by the score-weighted mean contribution, and the
reviewer column names the strongest supporting (or opposing) reviewer.`,
		Example: `  ymatch businesses qjfMBIZpQT9DDtw_BWCopQ
  ymatch businesses alice --format csv > suggestions.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runBusinesses,
	}
)

func init() {
	businessesFlags.register(businessesCmd)
	RootCmd.AddCommand(businessesCmd)
}

func runBusinesses(cmd *cobra.Command, args []string) error {
	target := resolveUser(args[0])
	logger := zap.L().With(zap.String("command", "businesses"), zap.String("user", target))

	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	res, err := m.Match(target)
	if err != nil {
		return err
	}
	logger.Debug("matched", zap.Int("common", len(res.Common)), zap.Int("suggestions", len(res.Suggestions)))

	return emitBusinesses(cmd, res, &businessesFlags)
}
