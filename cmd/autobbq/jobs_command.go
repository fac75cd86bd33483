package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autobbq/internal/config"
	"autobbq/internal/queue"
)

func newJobsCommand(configFlag *string) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the job queue",
	}
	jobsCmd.AddCommand(newJobsListCommand(configFlag))
	return jobsCmd
}

func newJobsListCommand(configFlag *string) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := queue.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, status)
			}

			jobs, err := store.List(context.Background(), statuses...)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				message := job.ErrorMessage
				if len(message) > 60 {
					message = message[:57] + "..."
				}
				rows = append(rows, []string{
					job.ID,
					job.VideoID,
					string(job.Kind),
					string(job.Status),
					fmt.Sprintf("%.0f%%", job.Progress),
					job.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					message,
				})
			}

			headers := []string{"Job", "Video", "Kind", "Status", "Progress", "Created", "Error"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show jobs with this status (queued, running, succeeded, failed)")
	return cmd
}
