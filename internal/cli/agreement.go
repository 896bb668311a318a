package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/agreement"
	"github.com/mesh-intelligence/docket/internal/convert"
)

func newAgreementCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agreement",
		Short: "Generate mediation agreements",
	}
	cmd.AddCommand(newAgreementGenerateCmd(a))
	return cmd
}

func newAgreementGenerateCmd(a *app) *cobra.Command {
	var req agreement.Request
	cmd := &cobra.Command{
		Use:   "generate <case>",
		Short: "Fill the agreement template for a case",
		Long: `Fill the mediation agreement template for a case and save it in the case
folder. The case must be open and have a client, an actor, a defendant,
an amount and its installments. The agreement date defaults to today and
is stored on the case.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, _, err := a.generator()
			if err != nil {
				return err
			}
			req.CaseRef = args[0]
			res, err := gen.Agreement(req)
			if err != nil {
				return err
			}
			return a.emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "Generated %s\n", res.Path)
				for _, inst := range res.Schedule {
					fmt.Fprintf(w, "  %2d. %s  %s\n", inst.Number, inst.Due.Format(dateLayout), convert.FormatMoney(inst.Amount, a.cfg.Currency))
				}
				for _, name := range res.Unassigned {
					fmt.Fprintf(a.errOut, "warning: representative %s acts for no party\n", name)
				}
			})
		},
	}
	cmd.Flags().StringVar(&req.Template, "template", "", "catalog template name (default: first agreement template)")
	cmd.Flags().BoolVar(&req.Overwrite, "overwrite", false, "replace an existing document")
	return cmd
}
