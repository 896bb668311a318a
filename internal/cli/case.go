package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func newCaseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage cases",
		Long: `Manage cases. Commands taking <case> accept the case ID or its number
(for example 12/2024).`,
	}
	cmd.AddCommand(
		newCaseAddCmd(a),
		newCaseListCmd(a),
		newCaseShowCmd(a),
		newCaseUpdateCmd(a),
		newCaseTransitionCmd(a, "close", "Close a case", (*casework.Cases).Close),
		newCaseTransitionCmd(a, "suspend", "Put an open case on hold", (*casework.Cases).Suspend),
		newCaseTransitionCmd(a, "reopen", "Reopen a closed or suspended case", (*casework.Cases).Reopen),
		newCaseDeleteCmd(a),
	)
	return cmd
}

// caseFlags are shared by case add and case update.
type caseFlags struct {
	client, number, title, kind, court, amount, agreementDate, notes string
	installments, periodDays                                         int
}

func (f *caseFlags) register(cmd *cobra.Command, kindDefault string) {
	cmd.Flags().StringVar(&f.client, "client", "", "client ID")
	cmd.Flags().StringVar(&f.number, "number", "", "case number, e.g. 12/2024")
	cmd.Flags().StringVar(&f.title, "title", "", "case title")
	cmd.Flags().StringVar(&f.kind, "kind", kindDefault, "case kind: "+strings.Join(types.CaseKinds, ", "))
	cmd.Flags().StringVar(&f.court, "court", "", "court or mediation center")
	cmd.Flags().StringVar(&f.amount, "amount", "", "agreed amount, e.g. 15000.50")
	cmd.Flags().IntVar(&f.installments, "installments", 0, "number of installments")
	cmd.Flags().IntVar(&f.periodDays, "period", 0, "days between installments")
	cmd.Flags().StringVar(&f.agreementDate, "agreement-date", "", "agreement date, e.g. 2024-03-05 or 05/03/2024")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

// apply copies the flags the user set onto c and returns how many.
func (f *caseFlags) apply(cmd *cobra.Command, c *types.Case) (int, error) {
	n := 0
	changed := func(name string) bool {
		if cmd.Flags().Changed(name) {
			n++
			return true
		}
		return false
	}
	if changed("client") {
		c.ClientID = f.client
	}
	if changed("number") {
		c.Number = f.number
	}
	if changed("title") {
		c.Title = f.title
	}
	if changed("kind") || c.Kind == "" {
		c.Kind = f.kind
	}
	if changed("court") {
		c.Court = f.court
	}
	if changed("amount") {
		amount, err := parseAmountFlag(f.amount)
		if err != nil {
			return n, err
		}
		c.Amount = amount
	}
	if changed("installments") {
		c.Installments = f.installments
	}
	if changed("period") {
		c.PeriodDays = f.periodDays
	}
	if changed("agreement-date") {
		d, err := parseDateFlag(f.agreementDate)
		if err != nil {
			return n, err
		}
		c.AgreementDate = d
	}
	if changed("notes") {
		c.Notes = f.notes
	}
	return n, nil
}

func newCaseAddCmd(a *app) *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open a case and create its folder",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c := &types.Case{}
			if _, err := f.apply(cmd, c); err != nil {
				return err
			}
			c, err = work.Cases.Open(c)
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Opened case %s (%s)\n", c.Number, c.CaseID)
				fmt.Fprintf(w, "  folder: %s\n", work.Cases.FolderPath(c))
			})
		},
	}
	f.register(cmd, types.CaseKindMediation)
	return cmd
}

func newCaseListCmd(a *app) *cobra.Command {
	var filter casework.CaseFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			cases, err := work.Cases.List(filter)
			if err != nil {
				return err
			}
			state := a.labels(types.CatalogCaseState)
			kind := a.labels(types.CatalogCaseKind)
			return a.emit(cases, func(w io.Writer) {
				tw := newTable(w, "NUMBER", "TITLE", "KIND", "STATE", "ID")
				for _, c := range cases {
					row(tw, c.Number, c.Title, kind(c.Kind), state(c.State), c.CaseID)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.ClientID, "client", "", "only cases of this client ID")
	cmd.Flags().StringVar(&filter.State, "state", "", "only cases in this state (open, suspended, closed)")
	cmd.Flags().StringVar(&filter.Kind, "kind", "", "only cases of this kind")
	return cmd
}

func newCaseShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <case>",
		Short: "Display a case with its parties and pending activities",
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
			client, err := work.Cases.Client(c)
			if err != nil {
				return err
			}
			parties, err := work.Parties.List(c.CaseID)
			if err != nil {
				return err
			}
			activities, err := work.Activities.List(c.CaseID, false)
			if err != nil {
				return err
			}

			out := map[string]any{
				"case":       c,
				"client":     client,
				"parties":    parties,
				"activities": activities,
				"folder":     work.Cases.FolderPath(c),
			}
			state := a.labels(types.CatalogCaseState)
			kind := a.labels(types.CatalogCaseKind)
			role := a.labels(types.CatalogRole)
			return a.emit(out, func(w io.Writer) {
				field(w, "ID", c.CaseID)
				field(w, "Number", c.Number)
				field(w, "Title", c.Title)
				field(w, "Client", client.Name)
				field(w, "Kind", kind(c.Kind))
				field(w, "State", state(c.State))
				field(w, "Court", c.Court)
				field(w, "Folder", work.Cases.FolderPath(c))
				if c.Amount > 0 {
					field(w, "Amount", convert.FormatMoney(c.Amount, a.cfg.Currency))
				}
				if c.Installments > 0 {
					field(w, "Installments", fmt.Sprintf("%d every %d days", c.Installments, c.PeriodDays))
				}
				field(w, "Agreement", formatDate(c.AgreementDate))
				field(w, "Notes", c.Notes)
				if len(parties) > 0 {
					fmt.Fprintln(w, "\nParties:")
					for _, p := range parties {
						fmt.Fprintf(w, "  %-16s %s (%s)\n", role(p.Role), p.Name, p.PartyID)
					}
				}
				if len(activities) > 0 {
					fmt.Fprintln(w, "\nPending:")
					for _, act := range activities {
						fmt.Fprintf(w, "  %-10s %s %s\n", formatDate(act.DueAt), act.Kind, act.Description)
					}
				}
			})
		},
	}
}

func newCaseUpdateCmd(a *app) *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "update <case>",
		Short: "Change case fields and agreement terms",
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
			n, err := f.apply(cmd, c)
			if err != nil {
				return err
			}
			if n == 0 {
				return errNothingToUpdate
			}
			c, err = work.Cases.Update(c)
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Updated case %s\n", c.Number)
			})
		},
	}
	f.register(cmd, "")
	return cmd
}

func newCaseTransitionCmd(a *app, use, short string, move func(*casework.Cases, string) (*types.Case, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <case>",
		Short: short,
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
			c, err = move(work.Cases, c.CaseID)
			if err != nil {
				return err
			}
			state := a.labels(types.CatalogCaseState)
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Case %s is now %s\n", c.Number, state(c.State))
			})
		},
	}
}

func newCaseDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <case>",
		Short: "Delete a case with its parties and activities",
		Long: `Delete a case with its parties and activities. The case folder and the
documents in it stay on disk.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Cases.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := work.Cases.Delete(c.CaseID); err != nil {
				return err
			}
			return a.emit(map[string]string{"deleted": c.CaseID}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted case %s; folder kept at %s\n", c.Number, work.Cases.FolderPath(c))
			})
		},
	}
}
