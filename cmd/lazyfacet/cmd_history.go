package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/history"
)

var (
	historyLimit int
	historyClear bool
)

// historyCmd lists the queries recorded by the query command
var historyCmd = &cobra.Command{
	Use:   "history [search]",
	Short: "List recently run queries",
	Long: `Lists the queries run with 'lazyfacet query', newest first. Re-run one
with 'lazyfacet query --replay <id>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if historyClear {
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		}

		var entries []history.Entry
		if len(args) == 1 {
			entries, err = store.Search(args[0], historyLimit)
		} else {
			entries, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tSOURCE\tMATCHED\tQUERY")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s\n",
				e.ID, e.ExecutedAt.Local().Format("2006-01-02 15:04"), e.Source, e.Matched, e.Total, e.Summary)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries shown")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every entry")
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	if cfg.Storage.HistoryPath == "" {
		return nil, fmt.Errorf("query history is disabled, set storage.history_path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.HistoryPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return history.NewStore(cfg.Storage.HistoryPath)
}

func replayEntry(id int64) (history.Entry, error) {
	store, err := openHistory()
	if err != nil {
		return history.Entry{}, err
	}
	defer func() { _ = store.Close() }()

	entry, ok, err := store.Get(id)
	if err != nil {
		return history.Entry{}, err
	}
	if !ok {
		return history.Entry{}, fmt.Errorf("history entry %d not found", id)
	}
	return entry, nil
}

// recordHistory stores a run, logging failures
func recordHistory(entry history.Entry) {
	if cfg.Storage.HistoryPath == "" {
		return
	}
	store, err := openHistory()
	if err != nil {
		logger.Warn("failed to open query history", zap.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.Add(entry); err != nil {
		logger.Warn("failed to record query", zap.Error(err))
	}
}

func recordsSource() string {
	switch {
	case recordsGlob != "":
		return recordsGlob
	case cfg.General.Records != "":
		return cfg.General.Records
	case cfg.General.PostgresDSN != "":
		return "postgres"
	default:
		return ""
	}
}
