package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the analysis queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(stats))
				for _, status := range queue.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				printRows(cmd.OutOrStdout(), []string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilters(listStatuses)
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.UserID,
						strconv.Itoa(item.QuestionNum),
						string(item.Status),
						fmt.Sprintf("%.0f%%", item.ProgressPercent),
						item.CreatedAt.Format(time.RFC3339),
					})
				}
				printRows(
					cmd.OutOrStdout(),
					[]string{"ID", "User", "Question", "Status", "Progress", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}

				rows := [][]string{
					{"ID", strconv.FormatInt(item.ID, 10)},
					{"Object key", item.ObjectKey},
					{"User", item.UserID},
					{"Question", strconv.Itoa(item.QuestionNum)},
					{"Gender", item.Gender},
					{"Status", string(item.Status)},
					{"Stage", item.ProgressStage},
					{"Progress", fmt.Sprintf("%.0f%%", item.ProgressPercent)},
					{"Needs review", yesNo(item.NeedsReview)},
					{"Created", item.CreatedAt.Format(time.RFC3339)},
					{"Updated", item.UpdatedAt.Format(time.RFC3339)},
				}
				if item.ProgressMessage != "" {
					rows = append(rows, []string{"Message", item.ProgressMessage})
				}
				if item.ErrorMessage != "" {
					rows = append(rows, []string{"Error", item.ErrorMessage})
				}
				if item.ReviewReason != "" {
					rows = append(rows, []string{"Review reason", item.ReviewReason})
				}
				if item.Transcript != "" {
					rows = append(rows, []string{"Transcript", truncate(item.Transcript, 120)})
				}
				printRows(cmd.OutOrStdout(), []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Move failed and review items back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(store *queue.Store) error {
				count, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d item(s)\n", count)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := 0
			for _, flag := range []bool{clearCompleted, clearFailed, clearAll} {
				if flag {
					selected++
				}
			}
			if selected != 1 {
				return errors.New("specify exactly one of --completed, --failed, or --all")
			}

			return ctx.withStore(func(store *queue.Store) error {
				var count int64
				var err error
				switch {
				case clearCompleted:
					count, err = store.ClearCompleted(cmd.Context())
				case clearFailed:
					count, err = store.ClearFailed(cmd.Context())
				default:
					count, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed items")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every item")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Database", health.DBPath},
					{"Exists", yesNo(health.DatabaseExists)},
					{"Readable", yesNo(health.DatabaseReadable)},
					{"Schema version", health.SchemaVersion},
					{"Integrity", yesNo(health.IntegrityCheck)},
					{"Total items", strconv.Itoa(health.TotalItems)},
				}
				if len(health.MissingColumns) > 0 {
					rows = append(rows, []string{"Missing columns", strings.Join(health.MissingColumns, ", ")})
				}
				if health.Error != "" {
					rows = append(rows, []string{"Error", health.Error})
				}
				printRows(cmd.OutOrStdout(), []string{"Check", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
				return nil
			})
		},
	}
}

func parseStatusFilters(values []string) ([]queue.Status, error) {
	if len(values) == 0 {
		return nil, nil
	}
	statuses := make([]queue.Status, 0, len(values))
	for _, value := range values {
		status, ok := queue.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
