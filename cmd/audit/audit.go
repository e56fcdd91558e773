package audit

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/dfaudit/internal/audit"
	"github.com/scan-io-git/dfaudit/pkg/shared/config"
	errs "github.com/scan-io-git/dfaudit/pkg/shared/errors"
	"github.com/scan-io-git/dfaudit/pkg/shared/logger"
)

// RunOptionsAudit holds the arguments for the audit command.
type RunOptionsAudit struct {
	WorkspaceRoot string
	Targets       []string
	Ignore        []string
	FileName      string
	Decode        string
	OnError       string
	Format        string
	OutputPath    string
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	auditOptions      RunOptionsAudit
	exampleAuditUsage = `  # Audit the default targets of the enclosing git workspace
  dfaudit audit

  # Audit specific folders of a workspace
  dfaudit audit --root ~/src/workspace --target services --target tools

  # Exclude shared templates and fail on unreadable files
  dfaudit audit --ignore 'shared/**/Dockerfile' --decode strict --on-error fail

  # Write a SARIF report to a folder
  dfaudit audit --format sarif --output /path/to/results`
)

// AuditCmd represents the audit command.
var AuditCmd = &cobra.Command{
	Use:                   "audit [--root/-r PATH] [--target/-t DIR]... [--ignore/-x PATTERN]... [--format/-f json|sarif] [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAuditUsage,
	Short:                 "Find Dockerfiles, classify them and report duplicates",
	Long: `Walks the target folders of a workspace, collects every Dockerfile outside hidden
folders, tags each one against a fixed pattern table, groups byte-identical files and
prints a single JSON summary to standard output. Diagnostics go to standard error.`,
	Args: cobra.NoArgs,
	RunE: runAuditCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// Run executes the audit with the configured defaults. It backs the bare root command.
func Run(cmd *cobra.Command) error {
	return execute(cmd, RunOptionsAudit{})
}

// runAuditCommand executes the audit command.
func runAuditCommand(cmd *cobra.Command, args []string) error {
	return execute(cmd, auditOptions)
}

func execute(cmd *cobra.Command, options RunOptionsAudit) error {
	logger := logger.NewLogger(AppConfig, "core-audit")

	auditConfig, err := validateAuditArgs(AppConfig, &options)
	if err != nil {
		logger.Error("invalid audit arguments", "error", err)
		return errs.NewCommandError(err, errs.ExitUsage)
	}

	opts, err := prepareAuditOptions(auditConfig)
	if err != nil {
		logger.Error("failed to prepare audit", "error", err)
		return errs.NewCommandError(err, errs.ExitUsage)
	}
	logger.Debug("workspace resolved", "root", opts.Root, "targets", opts.Targets)

	auditor, err := audit.New(opts, logger)
	if err != nil {
		logger.Error("failed to prepare audit", "error", err)
		return errs.NewCommandError(err, errs.ExitUsage)
	}

	summary, err := auditor.Run()
	if err != nil {
		logger.Error("audit command failed", "error", err)
		return errs.NewCommandError(err, errs.ExitFailure)
	}

	if err := writeReport(cmd.OutOrStdout(), summary, auditor.Rules(), auditConfig.Format, options.OutputPath, logger); err != nil {
		logger.Error("failed to write report", "error", err)
		return errs.NewCommandError(err, errs.ExitFailure)
	}

	logger.Debug("audit command completed successfully")
	return nil
}

// Initialize flags for the audit command.
func init() {
	AuditCmd.Flags().StringVarP(&auditOptions.WorkspaceRoot, "root", "r", "", "Workspace root. Defaults to the top level of the enclosing git worktree, or the current folder.")
	AuditCmd.Flags().StringSliceVarP(&auditOptions.Targets, "target", "t", nil, "Folder relative to the workspace root to scan. Repeatable.")
	AuditCmd.Flags().StringSliceVarP(&auditOptions.Ignore, "ignore", "x", nil, "Workspace-relative path or glob to exclude. Repeatable.")
	AuditCmd.Flags().StringVar(&auditOptions.FileName, "file-name", "", "Exact file name to collect (default \"Dockerfile\").")
	AuditCmd.Flags().StringVar(&auditOptions.Decode, "decode", "", "Handling of invalid UTF-8: ignore, replace or strict.")
	AuditCmd.Flags().StringVar(&auditOptions.OnError, "on-error", "", "Policy for unreadable files: skip or fail.")
	AuditCmd.Flags().StringVarP(&auditOptions.Format, "format", "f", "", "Report format: json or sarif.")
	AuditCmd.Flags().StringVarP(&auditOptions.OutputPath, "output", "o", "", "Write the report to this file or folder instead of standard output.")
	AuditCmd.Flags().BoolP("help", "h", false, "Show help for the audit command.")
}
