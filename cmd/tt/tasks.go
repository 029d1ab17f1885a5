package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tasksdk "tasktracker/sdk/go"
)

func taskCmd() *cobra.Command {
	tsk := &cobra.Command{Use: "task", Short: "Manage tasks on a running server"}
	tsk.AddCommand(taskAddCmd())
	tsk.AddCommand(taskListCmd())
	tsk.AddCommand(taskSetDoneCmd("done", "Mark a task done", true))
	tsk.AddCommand(taskSetDoneCmd("undo", "Mark a task not done", false))
	tsk.AddCommand(taskRemoveCmd())
	return tsk
}

func taskAddCmd() *cobra.Command {
	var id int
	var title string
	var done bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("id") {
				return fmt.Errorf("--id required")
			}
			if title == "" {
				return fmt.Errorf("--title required")
			}
			res, err := newClient().CreateTask(cmd.Context(), id, title, done)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "task id (client-chosen, unique)")
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().BoolVar(&done, "done", false, "create the task already done")
	return cmd
}

func taskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			renderTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func taskSetDoneCmd(use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			res, err := newClient().SetDone(cmd.Context(), id, done)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func taskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			msg, err := newClient().DeleteTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]string{"message": msg})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
}

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func printResult(w io.Writer, res tasksdk.TaskResult) error {
	if viper.GetBool("json") {
		return printJSON(w, res)
	}
	_, err := fmt.Fprintf(w, "%s: #%d %s [%s]\n", res.Message, res.Task.ID, res.Task.Title, status(res.Task.Done))
	return err
}

func renderTasks(w io.Writer, tasks []tasksdk.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Status"})
	done := 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
		tw.AppendRow(table.Row{t.ID, t.Title, status(t.Done)})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d total", len(tasks)), fmt.Sprintf("%d done", done)})
	tw.Render()
}

func status(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
