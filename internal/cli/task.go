package cli

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (next actions, waiting-fors, someday/maybe)",
	Long:  "Create, list, complete, and manage tasks in the nextaction ledger",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new task",
	Long: `Create a new task.

With --repeat and no --due, the due date is the first occurrence of the
schedule from now. With both, --due must itself be an occurrence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		contextID, _ := cmd.Flags().GetString("context")
		projectID, _ := cmd.Flags().GetString("project")
		clientID, _ := cmd.Flags().GetString("client")
		priorityID, _ := cmd.Flags().GetString("priority")
		due, _ := cmd.Flags().GetString("due")
		start, _ := cmd.Flags().GetString("start")
		repeat, _ := cmd.Flags().GetString("repeat")
		estimate, _ := cmd.Flags().GetInt("estimate")
		energy, _ := cmd.Flags().GetString("energy")
		timezone, _ := cmd.Flags().GetString("timezone")

		loc := wire.Location()
		dueDate, err := parseDate(due, loc)
		if err != nil {
			return err
		}
		startDate, err := parseDate(start, loc)
		if err != nil {
			return err
		}

		return wire.TaskAdapter().Create(cmd.Context(), primary.CreateTaskRequest{
			Name:                 args[0],
			Description:          description,
			Status:               status,
			ContextID:            contextID,
			ProjectID:            projectID,
			ClientID:             clientID,
			PriorityID:           priorityID,
			DueDate:              dueDate,
			StartDate:            startDate,
			RecurrenceExpression: repeat,
			TimeEstimate:         estimate,
			EnergyLevel:          energy,
			Timezone:             timezone,
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		priorityID, _ := cmd.Flags().GetString("priority")
		projectID, _ := cmd.Flags().GetString("project")
		contextID, _ := cmd.Flags().GetString("context")
		dueBefore, _ := cmd.Flags().GetString("due-before")
		overdue, _ := cmd.Flags().GetBool("overdue")
		all, _ := cmd.Flags().GetBool("all")

		before, err := parseDate(dueBefore, wire.Location())
		if err != nil {
			return err
		}

		return wire.TaskAdapter().List(cmd.Context(), primary.TaskFilters{
			Status:          status,
			PriorityID:      priorityID,
			ProjectID:       projectID,
			ContextID:       contextID,
			DueBefore:       before,
			OverdueOnly:     overdue,
			IncludeArchived: all,
		})
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TaskAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update task fields",
	Long: `Update task fields. Only flags that are passed are changed; pass an empty
value (e.g. --due "") to clear an optional field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateTaskRequest{TaskID: args[0]}
		req.Timezone, _ = cmd.Flags().GetString("timezone")

		flags := cmd.Flags()
		stringFlag := func(name string) mo.Option[string] {
			if !flags.Changed(name) {
				return mo.None[string]()
			}
			v, _ := flags.GetString(name)
			return mo.Some(v)
		}

		req.Name = stringFlag("name")
		req.Description = stringFlag("description")
		req.Status = stringFlag("status")
		req.ContextID = stringFlag("context")
		req.ProjectID = stringFlag("project")
		req.ClientID = stringFlag("client")
		req.PriorityID = stringFlag("priority")
		req.RecurrenceExpression = stringFlag("repeat")
		req.EnergyLevel = stringFlag("energy")

		if flags.Changed("estimate") {
			v, _ := flags.GetInt("estimate")
			req.TimeEstimate = mo.Some(v)
		}

		loc := wire.Location()
		if flags.Changed("due") {
			v, _ := flags.GetString("due")
			t, err := parseDate(v, loc)
			if err != nil {
				return err
			}
			req.DueDate = mo.Some(t)
		}
		if flags.Changed("start") {
			v, _ := flags.GetString("start")
			t, err := parseDate(v, loc)
			if err != nil {
				return err
			}
			req.StartDate = mo.Some(t)
		}

		return wire.TaskAdapter().Update(cmd.Context(), req)
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as completed",
	Long: `Mark a task as completed.

Completing a recurring task creates its next occurrence, carrying over the
task's context, project, priority and schedule.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timezone, _ := cmd.Flags().GetString("timezone")
		return wire.TaskAdapter().Complete(cmd.Context(), args[0], timezone)
	},
}

var taskArchiveCmd = &cobra.Command{
	Use:   "archive [task-id]",
	Short: "Archive a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return wire.TaskAdapter().Archive(cmd.Context(), args[0], force)
	},
}

var taskNextCmd = &cobra.Command{
	Use:   "next [task-id]",
	Short: "Preview upcoming occurrences of a recurring task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timezone, _ := cmd.Flags().GetString("timezone")
		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}
		return wire.TaskAdapter().Next(cmd.Context(), args[0], timezone, count)
	},
}

var taskHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show the change history of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.TaskAdapter().History(cmd.Context(), args[0])
	},
}

func init() {
	// task create flags
	taskCreateCmd.Flags().StringP("description", "d", "", "Task description")
	taskCreateCmd.Flags().StringP("status", "s", "", "Status (defaults to Next Action)")
	taskCreateCmd.Flags().StringP("context", "c", "", "Context ID (e.g. CTX-001)")
	taskCreateCmd.Flags().StringP("project", "p", "", "Project ID (defaults to Miscellaneous)")
	taskCreateCmd.Flags().String("client", "", "Client ID")
	taskCreateCmd.Flags().String("priority", "", "Priority ID (e.g. PRI-001)")
	taskCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339)")
	taskCreateCmd.Flags().String("start", "", "Start date")
	taskCreateCmd.Flags().StringP("repeat", "r", "", "Recurrence expression (e.g. \"every weekday at 9am\")")
	taskCreateCmd.Flags().Int("estimate", 0, "Time estimate in minutes")
	taskCreateCmd.Flags().String("energy", "", "Energy level (low, medium, high)")
	taskCreateCmd.Flags().String("timezone", "", "Timezone for the recurrence (defaults to config)")

	// task list flags
	taskListCmd.Flags().StringP("status", "s", "", "Filter by status")
	taskListCmd.Flags().String("priority", "", "Filter by priority ID")
	taskListCmd.Flags().StringP("project", "p", "", "Filter by project ID")
	taskListCmd.Flags().StringP("context", "c", "", "Filter by context ID")
	taskListCmd.Flags().String("due-before", "", "Only tasks due on or before this date")
	taskListCmd.Flags().Bool("overdue", false, "Only open tasks past their due date")
	taskListCmd.Flags().BoolP("all", "a", false, "Include archived tasks")

	// task update flags
	taskUpdateCmd.Flags().String("name", "", "New name")
	taskUpdateCmd.Flags().StringP("description", "d", "", "New description")
	taskUpdateCmd.Flags().StringP("status", "s", "", "New status")
	taskUpdateCmd.Flags().StringP("context", "c", "", "New context ID")
	taskUpdateCmd.Flags().StringP("project", "p", "", "New project ID")
	taskUpdateCmd.Flags().String("client", "", "New client ID")
	taskUpdateCmd.Flags().String("priority", "", "New priority ID")
	taskUpdateCmd.Flags().String("due", "", "New due date")
	taskUpdateCmd.Flags().String("start", "", "New start date")
	taskUpdateCmd.Flags().StringP("repeat", "r", "", "New recurrence expression")
	taskUpdateCmd.Flags().Int("estimate", 0, "New time estimate in minutes")
	taskUpdateCmd.Flags().String("energy", "", "New energy level")
	taskUpdateCmd.Flags().String("timezone", "", "Timezone for the recurrence")

	// task complete flags
	taskCompleteCmd.Flags().String("timezone", "", "Timezone for computing the next occurrence")

	// task archive flags
	taskArchiveCmd.Flags().BoolP("force", "f", false, "Allow archiving a completed task")

	// task next flags
	taskNextCmd.Flags().String("timezone", "", "Timezone for the schedule")
	taskNextCmd.Flags().IntP("count", "n", 5, "Number of occurrences")

	// Register subcommands
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskArchiveCmd)
	taskCmd.AddCommand(taskNextCmd)
	taskCmd.AddCommand(taskHistoryCmd)
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	return taskCmd
}
