package app

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flab03/ymatch-analysis/internal/config"
	"github.com/flab03/ymatch-analysis/internal/matcher"
)

var (
	cfgFile      string
	inputPath    string
	decompressor string
	dbPath       string
	logLevel     string
	quiet        bool

	cfg     *config.Config
	aliases *config.Aliases

	// RootCmd is the root command for ymatch
	RootCmd = &cobra.Command{
		Use:   "ymatch",
		Short: "Suggest friends and businesses from Yelp review history",
		Long: `ymatch reads a Yelp academic dataset review dump and, for one target user,
suggests other users with similar taste and businesses those users rated
differently from the crowd.

A user's match score grows with the number of businesses reviewed in common
and shrinks with the average star difference on them. A business is suggested
when well-matched users rated it above (or below) its average; the target's
own businesses are never suggested.

The corpus is one JSON review per line, plain, gzip (.gz) or zstd (.zst)
compressed, or piped through an external decompressor.`,
		Example: `  # Users with similar taste, best match first
  ymatch friends qjfMBIZpQT9DDtw_BWCopQ

  # Business suggestions as CSV, two-argument form
  ymatch match qjfMBIZpQT9DDtw_BWCopQ suggest_businesses --format csv

  # Why was a business suggested?
  ymatch explain qjfMBIZpQT9DDtw_BWCopQ 4bEjOyTaDG24SY5TxsaUNQ

  # Read through zcat instead of the built-in gzip reader
  ymatch --decompressor zcat friends alice`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
)

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or <config dir>/config.yaml)")
	pf.StringVar(&inputPath, "input", "", "review corpus path, - for stdin (default: yelp_academic_dataset_review.json.gz)")
	pf.StringVar(&decompressor, "decompressor", "", "external decompressor command, e.g. zcat")
	pf.StringVar(&dbPath, "db", "", "run history database (default: <config dir>/ymatch.db)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	RootCmd.SuggestionsMinimumDistance = 2
}

// setup loads configuration, the logger and user aliases before any command.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := config.InitLogger(c.Log); err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	a, err := config.LoadAliases(dir)
	if err != nil {
		return err
	}

	cfg, aliases = c, a
	zap.L().Debug("config loaded",
		zap.String("input", c.Input.Path),
		zap.String("decompressor", c.Input.Decompressor),
		zap.Int("aliases", len(a.Users)),
	)
	return nil
}

// Execute runs the root command. Invariant violations are logged with
// their full stack before being returned.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil && errors.Is(err, matcher.ErrInvariant) {
		zap.L().Error("internal invariant violated", zap.String("trace", eris.ToString(err, true)))
	}
	return err
}
