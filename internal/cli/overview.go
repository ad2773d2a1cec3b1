package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/taskrabbit/internal/models"
)

func newStatsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			stats := rt.app.Analytics.Stats(cmd.Context())
			return rt.render(cmd, stats, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Total:\t%d\n", stats.Total)
				fmt.Fprintf(tw, "Todo:\t%d\n", stats.Todo)
				fmt.Fprintf(tw, "In progress:\t%d\n", stats.InProgress)
				fmt.Fprintf(tw, "Review:\t%d\n", stats.Review)
				fmt.Fprintf(tw, "Completed:\t%d\n", stats.Completed)
				fmt.Fprintf(tw, "Archived:\t%d\n", stats.Archived)
				fmt.Fprintf(tw, "Overdue:\t%d\n", stats.Overdue)
				fmt.Fprintf(tw, "Completion rate:\t%d%%\n", stats.CompletionRate)
				for _, priority := range models.Priorities {
					fmt.Fprintf(tw, "Priority %s:\t%d\n", priority, stats.PriorityBreakdown[priority])
				}
				return tw.Flush()
			})
		},
	}
}

func newCalendarCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [date]",
		Short: "List the tasks due on a day, today by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.currentUser(); err != nil {
				return err
			}

			day := time.Now()
			if len(args) == 1 {
				var err error
				day, err = models.ParseDueDate(args[0], time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
			}

			tasks := rt.app.Tasks.TasksDueOn(cmd.Context(), day)
			return rt.render(cmd, tasks, func(w io.Writer) error {
				fmt.Fprintf(w, "Due on %s:\n", day.Format(models.DateLayout))
				return writeTasks(w, tasks)
			})
		},
	}
}

func newPrefsCommand(rt *runtime) *cobra.Command {
	var (
		prefs       models.UserPreferences
		theme       string
		defaultView string
		notifyEmail bool
		notifyPush  bool
		notifyInApp bool
	)

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long:  `Show the preferences. Any flag that is set is changed and saved first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			current := rt.app.Preferences.Preferences(ctx)

			flags := cmd.Flags()
			changed := false
			if flags.Changed("theme") {
				current.Theme = models.Theme(theme)
				changed = true
			}
			if flags.Changed("language") {
				current.Language = prefs.Language
				changed = true
			}
			if flags.Changed("view") {
				current.DefaultView = models.ViewType(defaultView)
				changed = true
			}
			if flags.Changed("items-per-page") {
				current.ItemsPerPage = prefs.ItemsPerPage
				changed = true
			}
			if flags.Changed("notify-email") {
				current.Notifications.Email = notifyEmail
				changed = true
			}
			if flags.Changed("notify-push") {
				current.Notifications.Push = notifyPush
				changed = true
			}
			if flags.Changed("notify-in-app") {
				current.Notifications.InApp = notifyInApp
				changed = true
			}

			if changed {
				updated, err := rt.app.Preferences.UpdatePreferences(ctx, current)
				if err != nil {
					return err
				}
				current = *updated
			}

			return rt.render(cmd, current, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Theme:\t%s\n", current.Theme)
				fmt.Fprintf(tw, "Language:\t%s\n", current.Language)
				fmt.Fprintf(tw, "Default view:\t%s\n", current.DefaultView)
				fmt.Fprintf(tw, "Items per page:\t%d\n", current.ItemsPerPage)
				fmt.Fprintf(tw, "Email notifications:\t%t\n", current.Notifications.Email)
				fmt.Fprintf(tw, "Push notifications:\t%t\n", current.Notifications.Push)
				fmt.Fprintf(tw, "In-app notifications:\t%t\n", current.Notifications.InApp)
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "light or dark")
	cmd.Flags().StringVar(&prefs.Language, "language", "", "Interface language")
	cmd.Flags().StringVar(&defaultView, "view", "", "list, kanban or calendar")
	cmd.Flags().IntVar(&prefs.ItemsPerPage, "items-per-page", models.DefaultPageSize, "Items per page, 1 to 100")
	cmd.Flags().BoolVar(&notifyEmail, "notify-email", true, "Email notifications")
	cmd.Flags().BoolVar(&notifyPush, "notify-push", true, "Push notifications")
	cmd.Flags().BoolVar(&notifyInApp, "notify-in-app", true, "In-app notifications")
	return cmd
}
