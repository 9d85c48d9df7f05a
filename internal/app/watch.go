package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flab03/ymatch-analysis/internal/matcher"
	"github.com/flab03/ymatch-analysis/internal/store"
	"github.com/flab03/ymatch-analysis/internal/watcher"
)

var (
	watchAction   string
	watchDebounce time.Duration
	watchFlags    resultFlags

	watchCmd = &cobra.Command{
		Use:   "watch <user_id>",
		Short: "Recompute suggestions whenever the corpus changes",
		Long: `Compute a result set once, then watch the corpus file and recompute it
every time the file is rewritten or replaced. Bursts of writes are debounced.

A corpus that fails to load (for example while a download is still in
progress) is reported and the watch continues. Press Ctrl+C to stop.`,
		Example: `  ymatch watch alice
  ymatch watch alice --action suggest_friends --debounce 2s`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchAction, "action", store.ActionBusinesses, "result set: suggest_friends or suggest_businesses")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before recomputing")
	watchFlags.register(watchCmd)
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := resolveUser(args[0])
	if watchAction != store.ActionFriends && watchAction != store.ActionBusinesses {
		return eris.Errorf("unknown action %q (want %s or %s)", watchAction, store.ActionFriends, store.ActionBusinesses)
	}
	if cfg.Input.Path == "-" {
		return eris.New("watch needs a corpus file, not stdin")
	}
	if _, _, err := watchFlags.resolve(); err != nil {
		return err
	}
	logger := zap.L().With(zap.String("command", "watch"), zap.String("user", target))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(cfg.Input.Path, watchDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	recompute := func(ctx context.Context) error {
		return recomputeResult(cmd, logger, renderOnce(ctx, cmd, target))
	}

	if err := recompute(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (press Ctrl+C to stop)\n", w.Path())
	logger.Info("watching corpus", zap.String("path", w.Path()))

	return w.Run(ctx, func(ctx context.Context) error {
		logger.Info("corpus changed")
		fmt.Fprintf(cmd.ErrOrStderr(), "\n── corpus changed at %s ──\n", time.Now().Format(time.TimeOnly))
		return recompute(ctx)
	})
}

// recomputeResult decides whether a failed recompute ends the watch. Data and
// I/O errors are reported and the watch continues; invariant violations stop it.
func recomputeResult(cmd *cobra.Command, logger *zap.Logger, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, matcher.ErrInvariant):
		return err
	default:
		// the next write may fix the corpus
		logger.Warn("recompute failed", zap.Error(err))
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return nil
	}
}

func renderOnce(ctx context.Context, cmd *cobra.Command, target string) error {
	m, err := loadMatcher(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := m.Match(target)
	if err != nil {
		return err
	}
	if watchAction == store.ActionFriends {
		return emitFriends(cmd, res, &watchFlags)
	}
	return emitBusinesses(cmd, res, &watchFlags)
}
