package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Track hearings, deadlines, calls and notes on cases",
	}
	cmd.AddCommand(
		newActivityAddCmd(a),
		newActivityListCmd(a),
		newActivityDoneCmd(a),
		newActivityUpcomingCmd(a),
	)
	return cmd
}

func newActivityAddCmd(a *app) *cobra.Command {
	var (
		act types.Activity
		due string
	)
	cmd := &cobra.Command{
		Use:   "add <case>",
		Short: "Add an activity to a case",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag(due)
			if err != nil {
				return err
			}
			act.DueAt = d

			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Cases.Resolve(args[0])
			if err != nil {
				return err
			}
			act.CaseID = c.CaseID
			added, err := work.Activities.Add(&act)
			if err != nil {
				return err
			}
			return a.emit(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s to case %s (%s)\n", added.Kind, c.Number, added.ActivityID)
			})
		},
	}
	cmd.Flags().StringVar(&act.Kind, "kind", types.ActivityNote, "activity kind: "+strings.Join(types.ActivityKinds, ", "))
	cmd.Flags().StringVarP(&act.Description, "description", "d", "", "what happens or must happen")
	cmd.Flags().StringVar(&due, "due", "", "due date")
	return cmd
}

func newActivityListCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list <case>",
		Short: "List the activities of a case",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Cases.Resolve(args[0])
			if err != nil {
				return err
			}
			list, err := work.Activities.List(c.CaseID, all)
			if err != nil {
				return err
			}
			kind := a.labels(types.CatalogActivityKind)
			return a.emit(list, func(w io.Writer) {
				tw := newTable(w, "DUE", "KIND", "DONE", "DESCRIPTION", "ID")
				for _, act := range list {
					done := ""
					if act.Done {
						done = "x"
					}
					row(tw, formatDate(act.DueAt), kind(act.Kind), done, act.Description, act.ActivityID)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed activities")
	return cmd
}

func newActivityDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark an activity completed",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			act, err := work.Activities.Complete(args[0])
			if err != nil {
				return err
			}
			return a.emit(act, func(w io.Writer) {
				fmt.Fprintf(w, "Completed %s\n", act.ActivityID)
			})
		},
	}
}

func newActivityUpcomingCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List overdue activities and those due in the next days",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			overdue, err := work.Activities.Overdue()
			if err != nil {
				return err
			}
			upcoming, err := work.Activities.Upcoming(a.now(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}

			// Resolve case numbers once for display.
			numbers := map[string]string{}
			number := func(caseID string) string {
				if n, ok := numbers[caseID]; ok {
					return n
				}
				n := caseID
				if c, err := work.Cases.Get(caseID); err == nil {
					n = c.Number
				}
				numbers[caseID] = n
				return n
			}
			kind := a.labels(types.CatalogActivityKind)
			section := func(w io.Writer, title string, list []*types.Activity) {
				if len(list) == 0 {
					return
				}
				fmt.Fprintf(w, "%s:\n", title)
				tw := newTable(w)
				for _, act := range list {
					row(tw, "  "+formatDate(act.DueAt), number(act.CaseID), kind(act.Kind), act.Description)
				}
				tw.Flush()
			}
			return a.emit(map[string]any{"overdue": overdue, "upcoming": upcoming}, func(w io.Writer) {
				if len(overdue)+len(upcoming) == 0 {
					fmt.Fprintf(w, "Nothing due in the next %d days\n", days)
					return
				}
				section(w, "Overdue", overdue)
				section(w, fmt.Sprintf("Next %d days", days), upcoming)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "how many days ahead to look")
	return cmd
}
