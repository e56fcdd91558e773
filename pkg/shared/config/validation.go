package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/scan-io-git/dfaudit/pkg/shared/files"
)

// ValidateConfig checks if the global configurations have valid values.
// Defaults and environment overrides are applied in place before validation.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateAuditConfig(&cfg.Audit); err != nil {
		return fmt.Errorf("YAML global config: audit directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the logger level name.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	if loggerConfig == nil {
		return fmt.Errorf("logger configuration is nil")
	}
	switch strings.ToUpper(loggerConfig.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	default:
		return fmt.Errorf("unknown log level %q", loggerConfig.Level)
	}
}

// ValidateAuditConfig applies environment overrides and defaults, then checks the audit values.
func ValidateAuditConfig(auditConfig *Audit) error {
	if auditConfig == nil {
		return fmt.Errorf("audit configuration is nil")
	}
	if err := updateWorkspaceRoot(auditConfig); err != nil {
		return fmt.Errorf("failed to update workspace root: %w", err)
	}
	updateTargets(auditConfig)
	if auditConfig.Ignore == nil {
		auditConfig.Ignore = append([]string(nil), DefaultIgnore...)
	}
	return ValidateAuditValues(auditConfig)
}

// ValidateAuditValues normalizes enum values, fills empty ones with defaults and checks them.
// Unlike ValidateAuditConfig it never consults the environment.
func ValidateAuditValues(auditConfig *Audit) error {
	if auditConfig == nil {
		return fmt.Errorf("audit configuration is nil")
	}

	auditConfig.FileName = SetThen(auditConfig.FileName, DefaultFileName)
	if strings.ContainsAny(auditConfig.FileName, `/\`) {
		return fmt.Errorf("file_name must be a bare file name: %q", auditConfig.FileName)
	}

	auditConfig.Decode = strings.ToLower(SetThen(auditConfig.Decode, DecodeIgnore))
	if err := validateOneOf("decode", auditConfig.Decode, DecodeIgnore, DecodeReplace, DecodeStrict); err != nil {
		return err
	}
	auditConfig.OnError = strings.ToLower(SetThen(auditConfig.OnError, OnErrorSkip))
	if err := validateOneOf("on_error", auditConfig.OnError, OnErrorSkip, OnErrorFail); err != nil {
		return err
	}
	auditConfig.Format = strings.ToLower(SetThen(auditConfig.Format, FormatJSON))
	if err := validateOneOf("format", auditConfig.Format, FormatJSON, FormatSARIF); err != nil {
		return err
	}

	return ValidatePatterns(auditConfig.Patterns)
}

// ValidatePatterns checks that every pattern has a unique name and a compilable expression.
func ValidatePatterns(patterns []Pattern) error {
	seen := make(map[string]struct{}, len(patterns))
	for i, p := range patterns {
		if p.Name == "" {
			return fmt.Errorf("pattern #%d has an empty name", i)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("pattern %q is declared more than once", p.Name)
		}
		seen[p.Name] = struct{}{}

		if p.Expr == "" {
			return fmt.Errorf("pattern %q has an empty expression", p.Name)
		}
		if _, err := regexp.Compile(p.Expr); err != nil {
			return fmt.Errorf("pattern %q has an invalid expression: %w", p.Name, err)
		}
	}
	return nil
}

// validateOneOf checks that value is one of the allowed options.
func validateOneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of [%s], got %q", name, strings.Join(allowed, ", "), value)
}

// updateWorkspaceRoot applies DFAUDIT_WORKSPACE_ROOT and expands a leading tilde.
// An empty root is left empty so the caller can detect the enclosing workspace.
func updateWorkspaceRoot(auditConfig *Audit) error {
	if root := os.Getenv("DFAUDIT_WORKSPACE_ROOT"); root != "" {
		auditConfig.WorkspaceRoot = root
	}
	if auditConfig.WorkspaceRoot == "" {
		return nil
	}

	expanded, err := files.ExpandPath(auditConfig.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("failed to expand workspace root %q: %w", auditConfig.WorkspaceRoot, err)
	}
	auditConfig.WorkspaceRoot = expanded
	return nil
}

// updateTargets applies DFAUDIT_TARGETS or falls back to DefaultTargets.
func updateTargets(auditConfig *Audit) {
	if envValue := os.Getenv("DFAUDIT_TARGETS"); envValue != "" {
		auditConfig.Targets = SplitList(envValue)
	}
	if len(auditConfig.Targets) == 0 {
		auditConfig.Targets = append([]string(nil), DefaultTargets...)
	}
}
