package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize docket storage",
		Long: `Create the configuration, data, cases and templates directories, write a
default config.yaml if missing, and initialize the database.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store(); err != nil {
				return err
			}
			for _, dir := range []string{a.cfg.CasesDir, a.cfg.TemplatesDir} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create directory: %w", err)
				}
			}

			return a.emit(map[string]string{
				"config_dir":    a.cfg.ConfigDir,
				"data_dir":      a.cfg.DataDir,
				"cases_dir":     a.cfg.CasesDir,
				"templates_dir": a.cfg.TemplatesDir,
			}, func(w io.Writer) {
				fmt.Fprintln(w, "Docket initialized successfully")
				fmt.Fprintln(w, "  config:   ", a.cfg.ConfigDir)
				fmt.Fprintln(w, "  data:     ", a.cfg.DataDir)
				fmt.Fprintln(w, "  cases:    ", a.cfg.CasesDir)
				fmt.Fprintln(w, "  templates:", a.cfg.TemplatesDir)
			})
		},
	}
}
