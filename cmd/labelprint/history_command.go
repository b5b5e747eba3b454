package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"labelprint/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var sku string

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, the items of one run, or every run of a SKU",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case len(args) == 1:
				items, err := store.Items(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if len(items) == 0 {
					return fmt.Errorf("no items recorded for run %s", args[0])
				}
				fmt.Fprintln(out, renderItems(items))
			case strings.TrimSpace(sku) != "":
				items, err := store.SKUHistory(cmd.Context(), strings.TrimSpace(sku), limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintf(out, "No history for %s\n", sku)
					return nil
				}
				fmt.Fprintln(out, renderItems(items))
			default:
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&sku, "sku", "", "Show every recorded outcome for this SKU")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Kind,
			r.Source,
			formatWhen(r.StartedAt),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Rendered),
			strconv.Itoa(r.Dispatched),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.CacheHits),
		})
	}
	return renderTable(
		[]string{"Run", "Kind", "Source", "Started", "Items", "Rendered", "Dispatched", "Failed", "Cached"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderItems(items []history.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		outcome := it.ErrorKind
		if outcome == "" {
			outcome = it.Stage
		}
		rows = append(rows, []string{
			strconv.Itoa(it.Position + 1),
			it.SKU,
			outcome,
			yesNo(it.CacheHit),
			it.Artifact,
			strings.Join(it.JobIDs, ", "),
			formatWhen(it.RecordedAt),
		})
	}
	return renderTable(
		[]string{"#", "SKU", "Outcome", "Cached", "Artifact", "Jobs", "Recorded"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
