package audit

import (
	"fmt"

	"github.com/scan-io-git/dfaudit/pkg/shared/config"
)

// validateAuditArgs merges the command flags over the loaded configuration and validates the result.
// The global configuration is left untouched.
func validateAuditArgs(cfg *config.Config, options *RunOptionsAudit) (*config.Audit, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is not initialized")
	}

	merged := cfg.Audit
	merged.Targets = append([]string(nil), cfg.Audit.Targets...)
	merged.Ignore = append([]string(nil), cfg.Audit.Ignore...)

	if options.WorkspaceRoot != "" {
		merged.WorkspaceRoot = options.WorkspaceRoot
	}
	if len(options.Targets) > 0 {
		merged.Targets = options.Targets
	}
	if len(options.Ignore) > 0 {
		merged.Ignore = options.Ignore
	}
	if options.FileName != "" {
		merged.FileName = options.FileName
	}
	if options.Decode != "" {
		merged.Decode = options.Decode
	}
	if options.OnError != "" {
		merged.OnError = options.OnError
	}
	if options.Format != "" {
		merged.Format = options.Format
	}

	if len(merged.Targets) == 0 {
		return nil, fmt.Errorf("at least one 'target' must be specified")
	}
	for _, target := range merged.Targets {
		if target == "" {
			return nil, fmt.Errorf("the 'target' flag cannot be empty")
		}
	}
	if err := config.ValidateAuditValues(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}
