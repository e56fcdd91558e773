package audit

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/dfaudit/internal/audit"
	"github.com/scan-io-git/dfaudit/internal/classify"
	"github.com/scan-io-git/dfaudit/internal/report"
	"github.com/scan-io-git/dfaudit/internal/workspace"
	"github.com/scan-io-git/dfaudit/pkg/shared/config"
	"github.com/scan-io-git/dfaudit/pkg/shared/files"
)

// reportBaseName is used when --output points at a folder.
const reportBaseName = "dockerfile-audit"

// prepareAuditOptions resolves the workspace and converts the validated configuration.
func prepareAuditOptions(auditConfig *config.Audit) (audit.Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return audit.Options{}, fmt.Errorf("unable to get current folder: %w", err)
	}
	root, err := workspace.Resolve(auditConfig.WorkspaceRoot, cwd)
	if err != nil {
		return audit.Options{}, err
	}

	mode, err := classify.ParseDecodeMode(auditConfig.Decode)
	if err != nil {
		return audit.Options{}, err
	}

	var patterns []classify.Definition
	if len(auditConfig.Patterns) > 0 {
		patterns = classify.DefinitionsFromConfig(auditConfig.Patterns)
	}

	return audit.Options{
		Root:        root,
		Targets:     auditConfig.Targets,
		Ignore:      auditConfig.Ignore,
		FileName:    auditConfig.FileName,
		Decode:      mode,
		FailOnError: auditConfig.OnError == config.OnErrorFail,
		Patterns:    patterns,
	}, nil
}

// writeReport renders the summary in the requested format to stdout or to outputPath.
func writeReport(stdout io.Writer, summary *report.Summary, rules []report.RuleInfo, format, outputPath string, logger hclog.Logger) error {
	var buf bytes.Buffer
	switch format {
	case config.FormatSARIF:
		if err := report.WriteSARIF(&buf, summary, rules); err != nil {
			return err
		}
	case config.FormatJSON, "":
		if err := report.WriteJSON(&buf, summary); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}

	if outputPath == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("error writing report: %w", err)
		}
		return nil
	}

	ext := format
	if ext == "" {
		ext = config.FormatJSON
	}
	fullPath, _, err := files.DetermineFileFullPath(outputPath, reportBaseName+"."+ext)
	if err != nil {
		return err
	}
	if err := files.WriteFile(fullPath, buf.Bytes()); err != nil {
		return fmt.Errorf("error writing report to %q: %w", fullPath, err)
	}
	logger.Info("report saved to file", "path", fullPath)
	return nil
}
