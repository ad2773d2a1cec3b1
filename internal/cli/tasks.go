package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adanyl0v/taskrabbit/internal/filter"
	"github.com/adanyl0v/taskrabbit/internal/models"
	"github.com/adanyl0v/taskrabbit/internal/services"
	"github.com/adanyl0v/taskrabbit/internal/validation"
)

// taskFlags are shared by add and update. On update only the flags that
// were set end up in the patch.
type taskFlags struct {
	title       string
	description string
	priority    string
	status      string
	dueDate     string
	assignedTo  string
	tags        []string
	progress    int
}

func (f *taskFlags) register(flags *pflag.FlagSet, withDefaults bool) {
	priority, status := "", ""
	if withDefaults {
		priority, status = string(models.PriorityMedium), string(models.StatusTodo)
	}

	flags.StringVarP(&f.description, "description", "d", "", "Task description")
	flags.StringVarP(&f.priority, "priority", "p", priority, "low, medium, high or urgent")
	flags.StringVarP(&f.status, "status", "s", status, "todo, in_progress, review, completed or archived")
	flags.StringVar(&f.dueDate, "due", "", "Due date, YYYY-MM-DD or RFC 3339")
	flags.StringVar(&f.assignedTo, "assign", "", "Assignee user id")
	flags.StringSliceVarP(&f.tags, "tags", "t", nil, "Comma separated tags")
	flags.IntVar(&f.progress, "progress", 0, "Progress from 0 to 100")
}

func newAddCommand(rt *runtime) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := rt.currentUser()
			if err != nil {
				return err
			}

			input := models.TaskInput{
				Title:       args[0],
				Description: f.description,
				Priority:    models.Priority(f.priority),
				Status:      models.Status(f.status),
				DueDate:     f.dueDate,
				AssignedTo:  f.assignedTo,
				CreatedBy:   user.ID,
				Tags:        f.tags,
			}
			if cmd.Flags().Changed("progress") {
				input.Progress = &f.progress
			}

			task, err := rt.app.Tasks.AddTask(cmd.Context(), input)
			if err != nil {
				return err
			}
			return rt.render(cmd, task, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created task %s\n", task.ID)
				return err
			})
		},
	}

	f.register(cmd.Flags(), true)
	return cmd
}

func newListCommand(rt *runtime) *cobra.Command {
	var (
		f      taskFlags
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  `List tasks, optionally narrowed by status, priority, assignee, due date and tags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			flags := cmd.Flags()
			tf := models.TaskFilter{Tags: f.tags}
			if flags.Changed("status") {
				status := models.Status(f.status)
				tf.Status = &status
			}
			if flags.Changed("priority") {
				priority := models.Priority(f.priority)
				tf.Priority = &priority
			}
			if flags.Changed("assign") {
				tf.AssignedTo = &f.assignedTo
			}
			if flags.Changed("due") {
				tf.DueDate = &f.dueDate
			}
			if err := validation.Filter(tf); err != nil {
				return err
			}

			tasks := rt.app.Tasks.Tasks(cmd.Context())
			if sortBy != "" {
				by := models.SortBy(sortBy)
				if !by.Valid() {
					return fmt.Errorf("unknown sort field: %s", sortBy)
				}
				tasks = rt.app.Tasks.SortedTasks(cmd.Context(), by)
			}
			tasks = filter.Apply(tasks, tf)

			return rt.render(cmd, tasks, func(w io.Writer) error {
				return writeTasks(w, tasks)
			})
		},
	}

	f.register(cmd.Flags(), false)
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by dueDate, priority or createdAt")
	return cmd
}

func newShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			task, err := rt.app.Tasks.GetTaskByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			return rt.render(cmd, task, func(w io.Writer) error {
				return writeTask(w, task)
			})
		},
	}
}

func newUpdateCommand(rt *runtime) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			flags := cmd.Flags()
			patch := models.TaskPatch{}
			if flags.Changed("title") {
				patch.Title = &f.title
			}
			if flags.Changed("description") {
				patch.Description = &f.description
			}
			if flags.Changed("priority") {
				priority := models.Priority(f.priority)
				patch.Priority = &priority
			}
			if flags.Changed("status") {
				status := models.Status(f.status)
				patch.Status = &status
			}
			if flags.Changed("due") {
				patch.DueDate = &f.dueDate
			}
			if flags.Changed("assign") {
				patch.AssignedTo = &f.assignedTo
			}
			if flags.Changed("tags") {
				patch.Tags = &f.tags
			}
			if flags.Changed("progress") {
				patch.Progress = &f.progress
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update, set at least one field flag")
			}

			task, err := rt.app.Tasks.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if task == nil {
				return fmt.Errorf("%w: %s", services.ErrTaskNotFound, args[0])
			}
			return rt.render(cmd, task, func(w io.Writer) error {
				return writeTask(w, task)
			})
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	f.register(cmd.Flags(), false)
	return cmd
}

func newDoneCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			task, err := rt.app.Tasks.ToggleComplete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if task == nil {
				return fmt.Errorf("%w: %s", services.ErrTaskNotFound, args[0])
			}
			return rt.render(cmd, task, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Task %s is now %s\n", task.ID, task.Status)
				return err
			})
		},
	}
}

func newDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := rt.app.Tasks.GetTaskByID(ctx, args[0]); err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			err := rt.app.Tasks.DeleteTask(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return err
		},
	}
}
