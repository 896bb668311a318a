package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <words>...",
		Short: "Find clients, cases and prospects",
		Long: `Find clients, cases and prospects whose fields contain every word.
Matching ignores case and accents.`,
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			results, err := work.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.emit(results, func(w io.Writer) {
				if len(results) == 0 {
					fmt.Fprintln(w, "No matches")
					return
				}
				tw := newTable(w, "KIND", "TITLE", "DETAIL", "ID")
				for _, r := range results {
					row(tw, r.Kind, r.Title, r.Detail, r.ID)
				}
				tw.Flush()
			})
		},
	}
}
