package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func newProspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prospect",
		Short: "Manage prospective clients",
	}
	cmd.AddCommand(
		newProspectAddCmd(a),
		newProspectListCmd(a),
		newProspectShowCmd(a),
		newProspectMoveCmd(a, "contact", "Mark a prospect as contacted", (*casework.Prospects).Contact),
		newProspectConvertCmd(a),
		newProspectMoveCmd(a, "discard", "Discard a prospect", (*casework.Prospects).Discard),
		newProspectDeleteCmd(a),
	)
	return cmd
}

func newProspectAddCmd(a *app) *cobra.Command {
	var p types.Prospect
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prospect",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			added, err := work.Prospects.Add(&p)
			if err != nil {
				return err
			}
			return a.emit(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added prospect %s (%s)\n", added.Name, added.ProspectID)
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&p.Email, "email", "", "email address")
	cmd.Flags().StringVar(&p.Source, "source", "", "how the prospect found the practice")
	return cmd
}

func newProspectListCmd(a *app) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prospects",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			prospects, err := work.Prospects.List(state)
			if err != nil {
				return err
			}
			return a.emit(prospects, func(w io.Writer) {
				tw := newTable(w, "ID", "NAME", "STATE", "PHONE", "SOURCE")
				for _, p := range prospects {
					row(tw, p.ProspectID, p.Name, p.State, p.Phone, p.Source)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "only prospects in this state (new, contacted, converted, discarded)")
	return cmd
}

func newProspectShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a prospect and their consultations",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			p, err := work.Prospects.Get(args[0])
			if err != nil {
				return err
			}
			consultations, err := work.Consultations.List(p.ProspectID)
			if err != nil {
				return err
			}
			return a.emit(map[string]any{"prospect": p, "consultations": consultations}, func(w io.Writer) {
				field(w, "ID", p.ProspectID)
				field(w, "Name", p.Name)
				field(w, "State", p.State)
				field(w, "Phone", p.Phone)
				field(w, "Email", p.Email)
				field(w, "Source", p.Source)
				field(w, "Client", p.ClientID)
				if len(consultations) > 0 {
					fmt.Fprintln(w, "\nConsultations:")
					for _, c := range consultations {
						fmt.Fprintf(w, "  %s  %s (%s)\n", c.Date.Format(dateLayout), c.Topic, c.ConsultationID)
					}
				}
			})
		},
	}
}

func newProspectMoveCmd(a *app, use, short string, move func(*casework.Prospects, string) (*types.Prospect, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			p, err := move(work.Prospects, args[0])
			if err != nil {
				return err
			}
			return a.emit(p, func(w io.Writer) {
				fmt.Fprintf(w, "Prospect %s is now %s\n", p.Name, p.State)
			})
		},
	}
}

func newProspectConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <id>",
		Short: "Turn a prospect into a client",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Prospects.Convert(args[0])
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Converted prospect to client %s (%s)\n", c.Name, c.ClientID)
			})
		},
	}
}

func newProspectDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prospect and their consultations",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			if err := work.Prospects.Delete(args[0]); err != nil {
				return err
			}
			return a.emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted prospect %s\n", args[0])
			})
		},
	}
}
