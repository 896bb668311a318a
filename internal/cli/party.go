package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newPartyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party",
		Short: "Manage the actors, defendants and representatives of a case",
	}
	cmd.AddCommand(
		newPartyAddCmd(a),
		newPartyListCmd(a),
		newPartyRemoveCmd(a),
	)
	return cmd
}

func newPartyAddCmd(a *app) *cobra.Command {
	var p types.Party
	cmd := &cobra.Command{
		Use:   "add <case>",
		Short: "Add a party to a case",
		Long: `Add a party to a case. A representative acts for the party named with
--represents, or for every party of --side when none is named.`,
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
			p.CaseID = c.CaseID
			added, err := work.Parties.Add(&p)
			if err != nil {
				return err
			}
			role := a.labels(types.CatalogRole)
			return a.emit(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s %s to case %s (%s)\n", role(added.Role), added.Name, c.Number, added.PartyID)
			})
		},
	}
	roles := strings.Join([]string{types.RoleActor, types.RoleDefendant, types.RoleRepresentative}, ", ")
	cmd.Flags().StringVar(&p.Role, "role", "", "party role: "+roles)
	cmd.Flags().StringVar(&p.Name, "name", "", "full name or company name")
	cmd.Flags().StringVar(&p.IDNumber, "id-number", "", "identity document number")
	cmd.Flags().StringVar(&p.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&p.RepresentsID, "represents", "", "party ID this representative acts for")
	cmd.Flags().StringVar(&p.Side, "side", "", "side this representative acts for: actor or defendant")
	return cmd
}

func newPartyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <case>",
		Short: "List the parties of a case grouped by side",
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
			rep, err := work.Parties.Representation(c.CaseID)
			if err != nil {
				return err
			}

			type principal struct {
				*types.Party
				Representatives []*types.Party `json:"representatives"`
			}
			group := func(ps []*types.Party) []principal {
				out := make([]principal, 0, len(ps))
				for _, p := range ps {
					out = append(out, principal{Party: p, Representatives: rep.For(p.PartyID)})
				}
				return out
			}
			out := map[string]any{
				"actors":     group(rep.Actors),
				"defendants": group(rep.Defendants),
				"unassigned": rep.Unassigned,
			}
			return a.emit(out, func(w io.Writer) {
				printSide(w, "Actors", rep.Actors, rep.For)
				printSide(w, "Defendants", rep.Defendants, rep.For)
				if len(rep.Unassigned) > 0 {
					fmt.Fprintln(w, "Unassigned representatives:")
					for _, p := range rep.Unassigned {
						fmt.Fprintf(w, "  %s (%s)\n", p.Name, p.PartyID)
					}
				}
			})
		},
	}
}

func printSide(w io.Writer, title string, principals []*types.Party, reps func(string) []*types.Party) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(principals) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range principals {
		fmt.Fprintf(w, "  %s (%s)\n", p.Name, p.PartyID)
		for _, r := range reps(p.PartyID) {
			fmt.Fprintf(w, "    represented by %s (%s)\n", r.Name, r.PartyID)
		}
	}
}

func newPartyRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <party-id>",
		Short: "Remove a party from its case",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			if err := work.Parties.Remove(args[0]); err != nil {
				return err
			}
			return a.emit(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed party %s\n", args[0])
			})
		},
	}
}
