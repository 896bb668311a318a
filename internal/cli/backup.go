package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/userror"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import the database as JSONL files",
	}
	cmd.AddCommand(newBackupExportCmd(a), newBackupImportCmd(a))
	return cmd
}

func newBackupExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write one JSONL file per table to dir",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.store(); err != nil {
				return err
			}
			stats, err := a.backend.Export(args[0])
			if err != nil {
				return err
			}
			return a.emit(stats, func(w io.Writer) {
				fmt.Fprintf(w, "Exported to %s\n", args[0])
				printCounts(w, "written", stats.Written, nil)
			})
		},
	}
}

func newBackupImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Replace the database contents with the JSONL files in dir",
		Long: `Replace the database contents with the JSONL files in dir. Lines that
cannot be read or stored are skipped and counted.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := filepath.Glob(filepath.Join(args[0], "*.jsonl"))
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return userror.Usage(fmt.Errorf("%s holds no .jsonl files", args[0]))
			}
			if _, err := a.store(); err != nil {
				return err
			}
			stats, err := a.backend.Import(args[0])
			if err != nil {
				return err
			}
			return a.emit(stats, func(w io.Writer) {
				fmt.Fprintf(w, "Imported from %s\n", args[0])
				printCounts(w, "loaded", stats.Loaded, stats.Skipped)
			})
		},
	}
}

func printCounts(w io.Writer, verb string, counts, skipped map[string]int) {
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	for t := range skipped {
		if _, ok := counts[t]; !ok {
			tables = append(tables, t)
		}
	}
	sort.Strings(tables)
	tw := newTable(w)
	for _, t := range tables {
		line := fmt.Sprintf("%d %s", counts[t], verb)
		if n := skipped[t]; n > 0 {
			line += fmt.Sprintf(", %d skipped", n)
		}
		row(tw, "  "+t, line)
	}
	tw.Flush()
}
