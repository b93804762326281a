package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RaduRS/automan-sub000/internal/deps"
	"github.com/RaduRS/automan-sub000/internal/notifications"
	"github.com/RaduRS/automan-sub000/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and render prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			statuses := preflight.CheckSystemDeps(cfg)
			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "Dependency"},
				{header: "Status"},
				{header: "Command", maxWidth: 48},
				{header: "Purpose", maxWidth: 48},
			}, buildDepRows(statuses)))

			fmt.Fprintln(out)
			for _, line := range sectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				fmt.Fprintln(out, checkLine(r, colorize))
			}

			missing := deps.Missing(statuses)
			failed := preflight.Failed(results)
			if len(missing) == 0 && len(failed) == 0 {
				return nil
			}
			var names []string
			for _, s := range missing {
				names = append(names, s.Name)
			}
			for _, r := range failed {
				names = append(names, r.Name)
			}
			return fmt.Errorf("render prerequisites not met: %s", strings.Join(names, ", "))
		},
	}
}

func buildDepRows(statuses []deps.Status) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "available"
		switch {
		case s.Available:
		case s.Optional:
			state = "missing (optional)"
		default:
			state = "missing"
		}
		command := s.Command
		if !s.Available && s.Detail != "" {
			command = s.Detail
		}
		rows = append(rows, []string{s.Name, state, command, s.Description})
	}
	return rows
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are disabled (notifications.ntfy_topic is empty)")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
