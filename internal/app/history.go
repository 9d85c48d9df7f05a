package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/flab03/ymatch-analysis/internal/output"
	"github.com/flab03/ymatch-analysis/internal/store"
)

var (
	historyShow   string
	historyDelete string
	historyFormat string

	historyCmd = &cobra.Command{
		Use:   "history [user_id]",
		Short: "List and inspect saved result sets",
		Long: `List result sets saved with --save, newest first, optionally for one user.

Use --show to print the rows of a saved run and --delete to remove one.`,
		Example: `  ymatch history
  ymatch history alice
  ymatch history --show 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&historyShow, "show", "", "print the rows of a saved run")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "delete a saved run")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "output format for --show: table, csv, json")
	historyCmd.MarkFlagsMutuallyExclusive("show", "delete")
	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case historyDelete != "":
		if err := st.DeleteRun(historyDelete); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", historyDelete)
		return nil
	case historyShow != "":
		return showRun(cmd, st, historyShow)
	}

	var target string
	if len(args) == 1 {
		target = resolveUser(args[0])
	}
	runs, err := st.ListRuns(target)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), output.RenderRunTable(runs))
	return err
}

func showRun(cmd *cobra.Command, st *store.Store, runID string) error {
	format := historyFormat
	if format == "" {
		format = cfg.Output.Format
	}
	fm, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}

	if run.Action == store.ActionFriends {
		rows, err := st.GetFriendRows(runID)
		if err != nil {
			return err
		}
		return output.WriteFriends(cmd.OutOrStdout(), rows, fm)
	}

	rows, err := st.GetBusinessRows(runID)
	if err != nil {
		return err
	}
	return output.WriteBusinesses(cmd.OutOrStdout(), rows, fm)
}
