package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasklist/app"
	"tasklist/model"
	"tasklist/view"
)

var ErrNotConfirmed = errors.New("confirmation required; pass --yes in non-interactive sessions")

func addCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task at the end of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.session.Dispatch(app.Add{Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", res.Notice.Text, res.View.Counts.All)
			return nil
		},
	}
}

func listCmd(opts *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks under a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := applyFilter(e.session, filter)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(model.FilterAll), "all, active or completed")
	return cmd
}

func editCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <n> <text...>",
		Short: "Replace the text of task n",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := taskID(e.session, args[0])
			if err != nil {
				return err
			}
			if _, err := e.session.Dispatch(app.BeginEdit{ID: id}); err != nil {
				return err
			}
			if _, err := e.session.Dispatch(app.Edit{ID: id, Text: strings.Join(args[1:], " ")}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%s\n", args[0])
			return nil
		},
	}
}

func toggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <n>",
		Short: "Flip task n between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := taskID(e.session, args[0])
			if err != nil {
				return err
			}
			if _, err := e.session.Dispatch(app.Toggle{ID: id}); err != nil {
				return err
			}
			task, _ := e.session.List().Get(id)
			state := "active"
			if task.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%s is now %s\n", args[0], state)
			return nil
		},
	}
}

func rmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Delete task n",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := taskID(e.session, args[0])
			if err != nil {
				return err
			}
			task, _ := e.session.List().Get(id)
			if _, err := e.session.Dispatch(app.Delete{ID: id}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Text)
			return nil
		},
	}
}

func clearCmd(opts *rootOptions) *cobra.Command {
	var (
		filter string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task shown under a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := applyFilter(e.session, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.View.Rows) == 0 {
				fmt.Fprintln(out, "Nothing to clear")
				return nil
			}

			confirmed := yes
			if !confirmed {
				if !opts.interactive() {
					return ErrNotConfirmed
				}
				confirmed, err = opts.confirm(app.ClearConfirmPrompt)
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
			}

			res, err = e.session.Dispatch(app.ClearFiltered{Confirmed: confirmed})
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(out, "Clear cancelled")
				return nil
			}
			fmt.Fprintf(out, "Cleared %d %s\n", res.Removed, plural(res.Removed))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(model.FilterAll), "all, active or completed")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func countsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show how many tasks each filter holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			for _, c := range e.session.View().Controls {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", c.Label, c.Count)
			}
			return nil
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			tasks := e.session.Tasks()
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				data, err := json.MarshalIndent(tasks, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case "yaml", "yml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(tasks); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown export format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	return cmd
}

func applyFilter(s *app.Session, name string) (app.Result, error) {
	f, err := model.ParseFilter(name)
	if err != nil {
		return app.Result{}, err
	}
	return s.Dispatch(app.SetFilter{Filter: f})
}

// taskID maps a 1-based position from the full list to a task ID.
func taskID(s *app.Session, arg string) (string, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return "", fmt.Errorf("invalid task number %q", arg)
	}
	id, ok := s.List().IDAt(n - 1)
	if !ok {
		return "", fmt.Errorf("%w: #%d", app.ErrTaskNotFound, n)
	}
	return id, nil
}

func printView(w io.Writer, res app.Result) {
	v := res.View
	if v.Empty {
		fmt.Fprintln(w, "No tasks here yet. Add one with `tasklist add`.")
		return
	}
	for _, row := range v.Rows {
		fmt.Fprintf(w, "%3d. %s %s\n", row.Position+1, checkbox(row), row.Task.Text)
	}
	fmt.Fprintf(w, "%d of %d shown (%s) • %d left\n", len(v.Rows), v.Counts.All, v.Filter.Label(), v.Counts.Active)
}

func checkbox(row view.Row) string {
	if row.Task.Completed {
		return "[x]"
	}
	return "[ ]"
}

func plural(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
