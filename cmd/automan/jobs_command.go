package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RaduRS/automan-sub000/internal/queue"
	"github.com/RaduRS/automan-sub000/internal/textutil"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage recorded render jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	jobsCmd.AddCommand(newJobsHealthCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No render jobs")
					return nil
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "ID", align: alignRight},
					{header: "Title", maxWidth: 32},
					{header: "Status"},
					{header: "Progress", align: alignRight},
					{header: "Scenes", align: alignRight},
					{header: "Timing"},
					{header: "Created"},
				}, buildJobRows(jobs, isTerminal(out))))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func buildJobRows(jobs []*queue.Job, colorize bool) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			job.Title,
			paint(string(job.Status), jobTone(job.Status), colorize),
			fmt.Sprintf("%.0f%%", job.ProgressPercent),
			strconv.Itoa(job.SceneCount),
			textutil.Label(job.TimingMode),
			job.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func parseStatuses(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, value := range values {
		status, ok := queue.ParseStatus(value)
		if !ok {
			valid := make([]string, 0, len(queue.AllStatuses()))
			for _, s := range queue.AllStatuses() {
				valid = append(valid, string(s))
			}
			return nil, fmt.Errorf("unknown status %q (valid: %s)", value, strings.Join(valid, ", "))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseJobID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", value)
	}
	return id, nil
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var showTimings bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show details for a render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %d not found", id)
				}
				out := cmd.OutOrStdout()
				for _, line := range describeJob(job) {
					fmt.Fprintln(out, line)
				}
				if showTimings && job.TimingsJSON != "" {
					fmt.Fprintln(out, job.TimingsJSON)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showTimings, "timings", false, "Print the scene timings recorded for a completed render")
	return cmd
}

func describeJob(job *queue.Job) []string {
	field := func(label, value string) string {
		return fmt.Sprintf("%-12s %s", label+":", value)
	}
	lines := []string{
		field("Job", strconv.FormatInt(job.ID, 10)),
		field("Title", job.Title),
		field("Status", string(job.Status)),
		field("Composition", job.CompositionPath),
		field("Output", job.OutputPath),
		field("Scenes", strconv.Itoa(job.SceneCount)),
		field("Timing", textutil.Label(job.TimingMode)),
		field("Captions", yesNo(job.Captions)),
	}
	if job.ProgressStage != "" {
		progress := fmt.Sprintf("%s %.1f%%", job.ProgressStage, job.ProgressPercent)
		if job.ProgressMessage != "" {
			progress += " (" + job.ProgressMessage + ")"
		}
		lines = append(lines, field("Progress", progress))
	}
	if job.Status == queue.StatusCompleted {
		lines = append(lines,
			field("Frames", strconv.Itoa(job.FramesRendered)),
			field("Placeholder", strconv.Itoa(job.PlaceholderCount)),
			field("Truncated", yesNo(job.Truncated)),
		)
	}
	if job.ErrorMessage != "" {
		lines = append(lines, field("Error", job.ErrorMessage))
	}
	if elapsed := job.Elapsed(); elapsed > 0 {
		lines = append(lines, field("Elapsed", elapsed.Round(time.Second).String()))
	}
	if job.CorrelationID != "" {
		lines = append(lines, field("Request", job.CorrelationID))
	}
	return lines
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a render job record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %d\n", id)
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				var removed int64
				var err error
				if all {
					removed, err = store.ClearAll(cmd.Context())
				} else {
					removed, err = store.ClearFinished(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d jobs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also remove jobs that are still marked in progress")
	return cmd
}

func newJobsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Summarize job counts by lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				if health.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No render jobs")
					return nil
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "State"},
					{header: "Count", align: alignRight},
				}, [][]string{
					{"Total", strconv.Itoa(health.Total)},
					{"Pending", strconv.Itoa(health.Pending)},
					{"Processing", strconv.Itoa(health.Processing)},
					{"Failed", strconv.Itoa(health.Failed)},
					{"Completed", strconv.Itoa(health.Completed)},
				}))
				return nil
			})
		},
	}
}
