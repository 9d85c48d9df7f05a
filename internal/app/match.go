package app

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flab03/ymatch-analysis/internal/store"
)

var (
	matchFlags resultFlags

	matchCmd = &cobra.Command{
		Use:   "match <user_id> <suggest_friends|suggest_businesses>",
		Short: "Emit one result set for a user",
		Long: `Emit friend or business suggestions for a user in one call.

This is the two-argument form of the friends and businesses commands:
  suggest_friends     users who reviewed the same businesses with similar stars
  suggest_businesses  businesses the user has not reviewed that matched users
                      rated away from the business average`,
		Example: `  ymatch match qjfMBIZpQT9DDtw_BWCopQ suggest_friends --format csv`,
		Args:    cobra.ExactArgs(2),
		RunE:    runMatch,
	}
)

func init() {
	matchFlags.register(matchCmd)
	RootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	target, action := resolveUser(args[0]), args[1]
	if action != store.ActionFriends && action != store.ActionBusinesses {
		return eris.Errorf("unknown action %q (want %s or %s)", action, store.ActionFriends, store.ActionBusinesses)
	}
	logger := zap.L().With(zap.String("command", "match"), zap.String("user", target), zap.String("action", action))

	m, err := loadMatcher(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	res, err := m.Match(target)
	if err != nil {
		return err
	}
	logger.Debug("matched", zap.Int("common", len(res.Common)), zap.Int("suggestions", len(res.Suggestions)))

	if action == store.ActionFriends {
		return emitFriends(cmd, res, &matchFlags)
	}
	return emitBusinesses(cmd, res, &matchFlags)
}
