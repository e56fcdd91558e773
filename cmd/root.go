package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/dfaudit/cmd/audit"
	"github.com/scan-io-git/dfaudit/cmd/version"
	"github.com/scan-io-git/dfaudit/pkg/shared/config"
	errs "github.com/scan-io-git/dfaudit/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "dfaudit [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Dfaudit inventories and classifies the Dockerfiles of a workspace.",
		Long: `Dfaudit walks a workspace, classifies every Dockerfile by build tooling and base images,
detects byte-identical copies and prints a JSON summary. Running it without a command
performs an audit with the configured defaults.
	`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: initConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return audit.Run(cmd)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $DFAUDIT_CONFIG, built-in defaults when unset)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errs.NewCommandError(err, errs.ExitUsage)
	})
	rootCmd.AddCommand(audit.AuditCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command with the process arguments and returns the exit code.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error executing command: %v\n", err)
		return errs.ExitCodeOf(err)
	}
	return errs.ExitOK
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error

	if cfgFile == "" {
		cfgFile = os.Getenv("DFAUDIT_CONFIG")
	}
	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		return errs.NewUsageError("initializing config file %q failed: %w", cfgFile, err)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return errs.NewCommandError(err, errs.ExitUsage)
	}

	audit.Init(AppConfig)
	version.Init(AppConfig)
	return nil
}
