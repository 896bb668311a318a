package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newClientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(
		newClientAddCmd(a),
		newClientListCmd(a),
		newClientShowCmd(a),
		newClientUpdateCmd(a),
		newClientDeleteCmd(a),
	)
	return cmd
}

// clientFlags are shared by client add and client update.
type clientFlags struct {
	name, idNumber, phone, email, address, notes string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.idNumber, "id-number", "", "identity document number")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.address, "address", "", "postal address")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

// apply copies the flags the user set onto c and returns how many.
func (f *clientFlags) apply(cmd *cobra.Command, c *types.Client) int {
	set := map[string]func(){
		"name":      func() { c.Name = f.name },
		"id-number": func() { c.IDNumber = f.idNumber },
		"phone":     func() { c.Phone = f.phone },
		"email":     func() { c.Email = f.email },
		"address":   func() { c.Address = f.address },
		"notes":     func() { c.Notes = f.notes },
	}
	n := 0
	for name, fn := range set {
		if cmd.Flags().Changed(name) {
			fn()
			n++
		}
	}
	return n
}

func newClientAddCmd(a *app) *cobra.Command {
	var f clientFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c := &types.Client{}
			f.apply(cmd, c)
			c, err = work.Clients.Add(c)
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Added client %s (%s)\n", c.Name, c.ClientID)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newClientListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			clients, err := work.Clients.List()
			if err != nil {
				return err
			}
			return a.emit(clients, func(w io.Writer) {
				tw := newTable(w, "ID", "NAME", "ID NUMBER", "PHONE", "EMAIL")
				for _, c := range clients {
					row(tw, c.ClientID, c.Name, c.IDNumber, c.Phone, c.Email)
				}
				tw.Flush()
			})
		},
	}
}

func newClientShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a client and their cases",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Clients.Get(args[0])
			if err != nil {
				return err
			}
			cases, err := work.Clients.Cases(c.ClientID)
			if err != nil {
				return err
			}
			state := a.labels(types.CatalogCaseState)
			return a.emit(map[string]any{"client": c, "cases": cases}, func(w io.Writer) {
				field(w, "ID", c.ClientID)
				field(w, "Name", c.Name)
				field(w, "ID number", c.IDNumber)
				field(w, "Phone", c.Phone)
				field(w, "Email", c.Email)
				field(w, "Address", c.Address)
				field(w, "Notes", c.Notes)
				field(w, "Created", c.CreatedAt.Format(dateTimeLayout))
				if len(cases) > 0 {
					fmt.Fprintln(w, "\nCases:")
					for _, k := range cases {
						fmt.Fprintf(w, "  %s  %s [%s]\n", k.Number, k.Title, state(k.State))
					}
				}
			})
		},
	}
}

func newClientUpdateCmd(a *app) *cobra.Command {
	var f clientFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change client fields",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Clients.Get(args[0])
			if err != nil {
				return err
			}
			if f.apply(cmd, c) == 0 {
				return errNothingToUpdate
			}
			c, err = work.Clients.Update(c)
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "Updated client %s\n", c.ClientID)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newClientDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client without cases",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			if err := work.Clients.Delete(args[0]); err != nil {
				return err
			}
			return a.emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted client %s\n", args[0])
			})
		},
	}
}
