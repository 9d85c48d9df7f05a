package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	friendsFlags resultFlags

	friendsCmd = &cobra.Command{
		Use:   "friends <user_id>",
		Short: "Suggest users with similar taste",
		Long: `List every user who reviewed at least one business in common with the
target, with a match score:

  score = (reviews in common + 2) / (total star difference + 2) - 1

Users who agree on many businesses score highest; scores can be negative
when the star differences outweigh the overlap.`,
		Example: `  ymatch friends qjfMBIZpQT9DDtw_BWCopQ
  ymatch friends alice --sort id --format json
  ymatch friends alice --save`,
		Args: cobra.ExactArgs(1),
		RunE: runFriends,
	}
)

func init() {
	friendsFlags.register(friendsCmd)
	RootCmd.AddCommand(friendsCmd)
}

func runFriends(cmd *cobra.Command, args []string) error {
	target := resolveUser(args[0])
	logger := zap.L().With(zap.String("command", "friends"), zap.String("user", target))

	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	res, err := m.Match(target)
	if err != nil {
		return err
	}
	logger.Debug("matched", zap.Int("common", len(res.Common)))

	return emitFriends(cmd, res, &friendsFlags)
}
