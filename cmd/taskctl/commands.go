package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ytakahashi/task-manager/internal/render"
	"github.com/ytakahashi/task-manager/internal/repl"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, true)
			if err != nil {
				return err
			}
			defer tr.Close()

			render.Tasks(cmd.OutOrStdout(), tr.Tasks())
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [title] [description]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, true)
			if err != nil {
				return err
			}
			defer tr.Close()

			task, err := tr.CreateTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			render.Task(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Toggle a task between Incomplete and Completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tr, err := openTracker(cmd, true)
			if err != nil {
				return err
			}
			defer tr.Close()

			if _, ok := tr.Get(id); !ok {
				render.Info(cmd.OutOrStdout(), fmt.Sprintf("task %d not found", id))
				return nil
			}
			if err := tr.ToggleActive(cmd.Context(), id); err != nil {
				return err
			}
			task, _ := tr.Get(id)
			render.Task(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tr, err := openTracker(cmd, true)
			if err != nil {
				return err
			}
			defer tr.Close()

			if _, ok := tr.Get(id); !ok {
				render.Info(cmd.OutOrStdout(), fmt.Sprintf("task %d not found", id))
				return nil
			}
			if err := tr.Delete(cmd.Context(), id); err != nil {
				return err
			}
			render.Info(cmd.OutOrStdout(), fmt.Sprintf("deleted task %d", id))
			return nil
		},
	}
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, false)
			if err != nil {
				return err
			}
			defer tr.Close()

			return repl.New(tr, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
