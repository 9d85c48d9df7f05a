package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flab03/ymatch-analysis/internal/matcher"
	"github.com/flab03/ymatch-analysis/internal/output"
	"github.com/flab03/ymatch-analysis/internal/source"
	"github.com/flab03/ymatch-analysis/internal/store"
)

// resultFlags are shared by every command that emits a result set.
type resultFlags struct {
	format string
	sort   string
	save   bool
}

func (f *resultFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "output format: table, csv, json (default: output.format)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort rows by score or id (default: output.sort)")
	cmd.Flags().BoolVar(&f.save, "save", false, "save the result set to the run history")
}

// resolve fills unset flags from the config.
func (f *resultFlags) resolve() (output.Format, output.SortKey, error) {
	format, sortBy := f.format, f.sort
	if format == "" {
		format = cfg.Output.Format
	}
	if sortBy == "" {
		sortBy = cfg.Output.Sort
	}

	fm, err := output.ParseFormat(format)
	if err != nil {
		return "", "", err
	}
	sk, err := output.ParseSortKey(sortBy)
	if err != nil {
		return "", "", err
	}
	return fm, sk, nil
}

func resolveUser(arg string) string {
	id := aliases.Resolve(arg)
	if id != arg {
		zap.L().Debug("alias resolved", zap.String("alias", arg), zap.String("user_id", id))
	}
	return id
}

func sourceOptions(cmd *cobra.Command) source.Options {
	return source.Options{
		Path:         cfg.Input.Path,
		Decompressor: cfg.Input.Decompressor,
		Stdin:        cmd.InOrStdin(),
	}
}

// loadTable reads and aggregates the corpus, showing progress on stderr
// unless --quiet is set.
func loadTable(ctx context.Context, cmd *cobra.Command) (*matcher.ReviewTable, error) {
	opts := sourceOptions(cmd)
	logger := zap.L().With(zap.String("input", opts.Path))
	logger.Info("reading review corpus", zap.String("decompressor", opts.Decompressor))

	start := time.Now()
	var onProgress func(source.Progress)
	var finish func()
	if !quiet {
		onProgress, finish = progressReporter(cmd)
	}

	table, err := source.LoadTable(ctx, opts, onProgress)
	if finish != nil {
		finish()
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("corpus aggregated",
		zap.Int("records", table.RecordCount()),
		zap.Int("pairs", table.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

// progressReporter picks a byte progress bar for files of known size and a
// record-counting spinner otherwise.
func progressReporter(cmd *cobra.Command) (func(source.Progress), func()) {
	w := cmd.ErrOrStderr()
	var bar *output.ProgressBar
	var spinner *output.Spinner

	report := func(p source.Progress) {
		if p.Size > 0 {
			if bar == nil {
				bar = output.NewProgress(p.Size, "reading reviews")
				bar.SetWriter(w)
			}
			bar.SetCurrent(p.Bytes)
			return
		}
		if spinner == nil {
			spinner = output.NewSpinner("Reading reviews").ShowElapsed()
			spinner.SetWriter(w)
			spinner.Start()
		}
		spinner.UpdateMessage(fmt.Sprintf("Reading reviews: %s records", humanize.Comma(p.Records)))
	}

	finish := func() {
		if bar != nil {
			bar.Finish()
		}
		if spinner != nil {
			spinner.Stop()
		}
	}
	return report, finish
}

// loadMatcher loads the corpus and derives the per-business and per-user
// baselines.
func loadMatcher(ctx context.Context, cmd *cobra.Command) (*matcher.Matcher, error) {
	table, err := loadTable(ctx, cmd)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := matcher.New(table)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("baselines built",
		zap.Int("businesses", m.NumBusinesses()),
		zap.Int("users", m.NumUsers()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// openStore opens the run history, creating its directory and schema.
func openStore() (*store.Store, error) {
	path := cfg.Store.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, eris.Wrap(err, "failed to create database directory")
	}

	st, err := store.New(path)
	if err != nil {
		return nil, err
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// emitFriends sorts, writes and optionally saves the friend result set.
func emitFriends(cmd *cobra.Command, res *matcher.Result, flags *resultFlags) error {
	format, sortBy, err := flags.resolve()
	if err != nil {
		return err
	}
	rows, err := res.FriendRows()
	if err != nil {
		return err
	}

	if flags.save {
		if err := saveFriends(cmd, res.Target, rows); err != nil {
			return err
		}
	}

	output.SortFriends(rows, sortBy)
	return output.WriteFriends(cmd.OutOrStdout(), rows, format)
}

// emitBusinesses sorts, writes and optionally saves the business result set.
func emitBusinesses(cmd *cobra.Command, res *matcher.Result, flags *resultFlags) error {
	format, sortBy, err := flags.resolve()
	if err != nil {
		return err
	}
	rows, err := res.BusinessRows()
	if err != nil {
		return err
	}

	if flags.save {
		if err := saveBusinesses(cmd, res.Target, rows); err != nil {
			return err
		}
	}

	output.SortBusinesses(rows, sortBy)
	return output.WriteBusinesses(cmd.OutOrStdout(), rows, format)
}

func saveFriends(cmd *cobra.Command, target string, rows []matcher.FriendRow) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.SaveFriendRun(target, cfg.Input.Path, rows)
	if err != nil {
		return err
	}
	zap.L().Info("run saved", zap.String("run", run.ID), zap.Int("rows", run.RowCount))
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s (%d rows)\n", run.ID, run.RowCount)
	}
	return nil
}

func saveBusinesses(cmd *cobra.Command, target string, rows []matcher.BusinessRow) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.SaveBusinessRun(target, cfg.Input.Path, rows)
	if err != nil {
		return err
	}
	zap.L().Info("run saved", zap.String("run", run.ID), zap.Int("rows", run.RowCount))
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s (%d rows)\n", run.ID, run.RowCount)
	}
	return nil
}
