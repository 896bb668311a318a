package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/userror"
	"github.com/mesh-intelligence/docket/pkg/types"
)

func newConsultationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consultation",
		Short: "Record prospect consultations and reformulate their facts",
	}
	cmd.AddCommand(
		newConsultationAddCmd(a),
		newConsultationListCmd(a),
		newConsultationShowCmd(a),
		newConsultationReformulateCmd(a),
	)
	return cmd
}

func newConsultationAddCmd(a *app) *cobra.Command {
	var (
		c         types.Consultation
		date      string
		factsFile string
	)
	cmd := &cobra.Command{
		Use:   "add <prospect-id>",
		Short: "Record a consultation",
		Long: `Record a consultation. The facts come from --facts, or from --facts-file
("-" reads standard input).`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if factsFile != "" {
				facts, err := readFacts(cmd, factsFile)
				if err != nil {
					return err
				}
				c.Facts = facts
			}
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			if d != nil {
				c.Date = *d
			}

			work, err := a.store()
			if err != nil {
				return err
			}
			if _, err := work.Prospects.Get(args[0]); err != nil {
				return err
			}
			c.ProspectID = args[0]
			added, err := work.Consultations.Add(&c)
			if err != nil {
				return err
			}
			return a.emit(added, func(w io.Writer) {
				fmt.Fprintf(w, "Recorded consultation %s\n", added.ConsultationID)
			})
		},
	}
	cmd.Flags().StringVar(&c.Topic, "topic", "", "subject of the consultation")
	cmd.Flags().StringVar(&c.Facts, "facts", "", "facts as told by the prospect")
	cmd.Flags().StringVar(&factsFile, "facts-file", "", "read the facts from a file")
	cmd.Flags().StringVar(&date, "date", "", "consultation date (default: today)")
	cmd.Flags().StringVar(&c.Notes, "notes", "", "free-form notes")
	cmd.MarkFlagsMutuallyExclusive("facts", "facts-file")
	return cmd
}

func readFacts(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read facts: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", userror.Usage(err)
		}
		return "", fmt.Errorf("read facts: %w", err)
	}
	return string(data), nil
}

func newConsultationListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [prospect-id]",
		Short: "List consultations, optionally of one prospect",
		Args: func(cmd *cobra.Command, args []string) error {
			return userror.Usage(cobra.MaximumNArgs(1)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			var prospectID string
			if len(args) == 1 {
				prospectID = args[0]
			}
			list, err := work.Consultations.List(prospectID)
			if err != nil {
				return err
			}
			return a.emit(list, func(w io.Writer) {
				tw := newTable(w, "ID", "DATE", "TOPIC", "REFORMULATED")
				for _, c := range list {
					done := "no"
					if c.ReformulatedFacts != "" {
						done = "yes"
					}
					row(tw, c.ConsultationID, c.Date.Format(dateLayout), c.Topic, done)
				}
				tw.Flush()
			})
		},
	}
}

func newConsultationShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a consultation",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			work, err := a.store()
			if err != nil {
				return err
			}
			c, err := work.Consultations.Get(args[0])
			if err != nil {
				return err
			}
			return a.emit(c, func(w io.Writer) { printConsultation(w, c) })
		},
	}
}

func printConsultation(w io.Writer, c *types.Consultation) {
	field(w, "ID", c.ConsultationID)
	field(w, "Prospect", c.ProspectID)
	field(w, "Date", c.Date.Format(dateLayout))
	field(w, "Topic", c.Topic)
	field(w, "Notes", c.Notes)
	fmt.Fprintf(w, "\nFacts:\n%s\n", c.Facts)
	if c.ReformulatedFacts != "" {
		fmt.Fprintf(w, "\nReformulated:\n%s\n", c.ReformulatedFacts)
	}
}

func newConsultationReformulateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reformulate <id>",
		Short: "Rewrite the facts in formal legal language with the AI assistant",
		Long: `Rewrite the facts of a consultation in formal legal Spanish with Gemini
and save the result on the consultation. Needs ai.api_key.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.reformulator(cmd.Context())
			if err != nil {
				return err
			}
			done, err := svc.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !a.flags.jsonMode {
				fmt.Fprintln(a.errOut, "Reformulating...")
			}
			res := <-done
			if res.Err != nil {
				return fmt.Errorf("consultation %s: %w", args[0], res.Err)
			}
			c := res.Consultation
			return a.emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", c.ReformulatedFacts)
			})
		},
	}
}
