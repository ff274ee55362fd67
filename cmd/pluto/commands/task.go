package commands

import (
	"fmt"

	"plutoTodo/cmd/pluto/output"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Работа с задачами",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список задач",
	Long: `Список задач, все фильтры объединяются через AND.

Examples:
  pluto task list --status open --priority High
  pluto task list --roots --due-before 2025-12-31
  pluto task list --search milk --output yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		tasks, err := a.TaskService().ListTasks(cmd.Context(), f)
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatText {
			return formatter.Print(output.TaskList(tasks))
		}
		return formatter.Print(tasks)
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Создать задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := task.CreateTaskRequest{Title: args[0]}

		if v, _ := cmd.Flags().GetString("description"); v != "" {
			req.Description = &v
		}
		if v, _ := cmd.Flags().GetString("priority"); v != "" {
			req.Priority = &v
		}
		if v, _ := cmd.Flags().GetString("due"); v != "" {
			req.DueDate = &v
		}
		req.Tags, _ = cmd.Flags().GetStringSlice("tag")

		var err error
		if req.CategoryID, err = uuidFlag(cmd, "category"); err != nil {
			return err
		}
		if req.ParentID, err = uuidFlag(cmd, "parent"); err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		created, err := a.TaskService().CreateTask(cmd.Context(), req)
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatText {
			return formatter.Print("Создана задача " + created.ID.String())
		}
		return formatter.Print(created)
	},
}

var taskTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Задача со всеми подзадачами",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("неверный id: %w", err)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		tasks, err := a.TaskService().GetTaskWithSubtasks(cmd.Context(), id)
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatText {
			return formatter.Print(output.TaskTree(tasks))
		}
		return formatter.Print(tasks)
	},
}

var taskProgressCmd = &cobra.Command{
	Use:   "progress <id>",
	Short: "Прогресс выполнения подзадач",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("неверный id: %w", err)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		progress, err := a.TaskService().CalculateTaskProgress(cmd.Context(), id)
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatText {
			return formatter.Print(output.Progress(progress))
		}
		return formatter.Print(progress)
	},
}

func filterFromFlags(cmd *cobra.Command) (task.Filter, error) {
	var f task.Filter

	switch status, _ := cmd.Flags().GetString("status"); status {
	case "", "all":
	case "open":
		f.Completed = new(bool)
	case "done":
		done := true
		f.Completed = &done
	default:
		return f, fmt.Errorf("неверный статус %q: допустимы all, open, done", status)
	}

	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p, err := task.LookupPriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}

	var err error
	if f.CategoryID, err = uuidFlag(cmd, "category"); err != nil {
		return f, err
	}
	if f.ParentID, err = uuidFlag(cmd, "parent"); err != nil {
		return f, err
	}

	f.NoCategory, _ = cmd.Flags().GetBool("no-category")
	f.RootOnly, _ = cmd.Flags().GetBool("roots")
	f.SearchQuery, _ = cmd.Flags().GetString("search")
	f.DueBefore, _ = cmd.Flags().GetString("due-before")
	f.DueAfter, _ = cmd.Flags().GetString("due-after")
	return f, nil
}

func uuidFlag(cmd *cobra.Command, name string) (*uuid.UUID, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &id, nil
}

func init() {
	taskListCmd.Flags().String("status", "all", "all, open или done")
	taskListCmd.Flags().String("priority", "", "Low, Medium или High")
	taskListCmd.Flags().String("category", "", "ID категории")
	taskListCmd.Flags().Bool("no-category", false, "Только задачи без категории")
	taskListCmd.Flags().String("parent", "", "Прямые подзадачи указанной задачи")
	taskListCmd.Flags().Bool("roots", false, "Только корневые задачи")
	taskListCmd.Flags().String("search", "", "Подстрока в названии или описании")
	taskListCmd.Flags().String("due-before", "", "Срок не позже (YYYY-MM-DD или RFC3339)")
	taskListCmd.Flags().String("due-after", "", "Срок не раньше (YYYY-MM-DD или RFC3339)")

	taskAddCmd.Flags().StringP("description", "d", "", "Описание")
	taskAddCmd.Flags().String("priority", "", "Low, Medium или High")
	taskAddCmd.Flags().String("due", "", "Срок (YYYY-MM-DD или RFC3339)")
	taskAddCmd.Flags().String("category", "", "ID категории")
	taskAddCmd.Flags().String("parent", "", "ID родительской задачи")
	taskAddCmd.Flags().StringSlice("tag", nil, "Теги, можно повторять")

	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskTreeCmd, taskProgressCmd)
	rootCmd.AddCommand(taskCmd)
}
