package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show or relabel case kinds, states, roles and activity kinds",
		Long: `Catalogs hold the labels shown for codes: case_kind, case_state, role and
activity_kind. Codes are fixed; labels can be changed.`,
	}
	cmd.AddCommand(newCatalogShowCmd(a), newCatalogSetCmd(a))
	return cmd
}

func newCatalogShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <catalog>",
		Short: "List the entries of a catalog",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store(); err != nil {
				return err
			}
			entries, err := a.backend.Catalog(args[0])
			if err != nil {
				return err
			}
			return a.emit(entries, func(w io.Writer) {
				tw := newTable(w, "#", "CODE", "LABEL")
				for _, e := range entries {
					row(tw, strconv.Itoa(e.Ordinal), e.Code, e.Label)
				}
				tw.Flush()
			})
		},
	}
}

func newCatalogSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <catalog> <code> <label>",
		Short: "Change the label of a catalog entry",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store(); err != nil {
				return err
			}
			if err := a.backend.SetLabel(args[0], args[1], args[2]); err != nil {
				return err
			}
			return a.emit(map[string]string{"catalog": args[0], "code": args[1], "label": args[2]}, func(w io.Writer) {
				fmt.Fprintf(w, "%s/%s is now labelled %q\n", args[0], args[1], args[2])
			})
		},
	}
}
