// Package cli implements the docket command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/userror"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// NewRootCmd creates the top-level "docket" command with global flags
// and all subcommands registered. The returned app must be closed after
// the command runs.
func NewRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := newApp(stdout, stderr)

	root := &cobra.Command{
		Use:   "docket",
		Short: "Client, case and document manager for a law practice",
		Long: `Docket keeps the clients, cases, prospects and consultations of a small
law practice, and fills Word templates (mediation agreements and other
case documents) from the case data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				return nil
			}
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userror.Usage(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $DOCKET_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.docket-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newClientCmd(a),
		newCaseCmd(a),
		newPartyCmd(a),
		newProspectCmd(a),
		newConsultationCmd(a),
		newActivityCmd(a),
		newAgreementCmd(a),
		newDocCmd(a),
		newSearchCmd(a),
		newCatalogCmd(a),
		newBackupCmd(a),
	)
	return root, a
}

// skipSetup reports whether cmd runs without configuration.
func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// Run executes the command line in args and returns the process exit code.
// Errors are printed to stderr through the user error table.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, a := NewRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		err = userror.Usage(err)
	}
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		return userror.Print(stderr, err, a.flags.verbose)
	}
	return 0
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return userror.Usage(cobra.ExactArgs(n)(cmd, args))
	}
}

// minimumArgs is cobra.MinimumNArgs reported as a usage error.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return userror.Usage(cobra.MinimumNArgs(n)(cmd, args))
	}
}
