package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/agreement"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Work with the document templates",
	}
	cmd.AddCommand(
		newDocTemplatesCmd(a),
		newDocGenerateCmd(a),
	)
	return cmd
}

func newDocTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the templates in templates.yaml",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, catalog, err := a.generator()
			if err != nil {
				return err
			}
			return a.emit(catalog.Templates, func(w io.Writer) {
				if len(catalog.Templates) == 0 {
					fmt.Fprintf(w, "No templates in %s\n", catalog.Dir)
					return
				}
				tw := newTable(w, "NAME", "KIND", "FILE", "DESCRIPTION")
				for _, t := range catalog.Templates {
					row(tw, t.Name, t.Kind, t.File, t.Description)
				}
				tw.Flush()
			})
		},
	}
}

func newDocGenerateCmd(a *app) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "generate <case> <template>...",
		Short: "Fill one or more templates for a case",
		Args:  minimumArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, _, err := a.generator()
			if err != nil {
				return err
			}
			caseRef, names := args[0], args[1:]

			var results []*agreement.Result
			if len(names) == 1 {
				res, err := gen.Generic(caseRef, names[0], overwrite)
				if err != nil {
					return err
				}
				results = append(results, res)
			} else {
				results, err = gen.GenericBatch(cmd.Context(), caseRef, names, overwrite)
				if err != nil {
					return err
				}
			}
			return a.emit(results, func(w io.Writer) {
				for _, res := range results {
					fmt.Fprintf(w, "Generated %s\n", res.Path)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing documents")
	return cmd
}
