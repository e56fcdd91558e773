package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	toolName           = "dfaudit"
	toolInformationURI = "https://github.com/scan-io-git/dfaudit"

	// DuplicateRuleID is the SARIF rule reported for every member of a duplicate cluster.
	DuplicateRuleID = "duplicate-dockerfile"
)

// RuleInfo describes a pattern for SARIF rule metadata.
type RuleInfo struct {
	Name        string
	Description string
}

// MarshalJSON renders the summary as an indented JSON document terminated by a newline.
func MarshalJSON(s *Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("error marshaling the summary: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the summary document to w.
func WriteJSON(w io.Writer, s *Summary) error {
	data, err := MarshalJSON(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing the summary: %w", err)
	}
	return nil
}

// BuildSARIF converts the summary into a SARIF 2.1.0 report with one rule per pattern
// plus the duplicate rule. Each tag and each duplicate cluster member becomes a result.
func BuildSARIF(s *Summary, rules []RuleInfo) (*sarif.Report, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	for _, rule := range rules {
		run.AddRule(rule.Name).
			WithDescription(rule.Description).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("note"))
	}
	run.AddRule(DuplicateRuleID).
		WithDescription("Dockerfile content is byte-identical to at least one other Dockerfile").
		WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("warning"))

	for _, rec := range s.Records {
		for _, tag := range rec.Tags {
			result := newResult(rec, tag, "note", fmt.Sprintf("Dockerfile matches pattern %q", tag))
			run.AddResult(result)
		}
		if rec.DuplicateGroup != "" {
			result := newResult(rec, DuplicateRuleID, "warning",
				fmt.Sprintf("Dockerfile is a duplicate of group %s", rec.DuplicateGroup))
			result.Add("duplicate_group", rec.DuplicateGroup)
			run.AddResult(result)
		}
	}

	reportSarif.AddRun(run)
	return reportSarif, nil
}

func newResult(rec *Record, ruleID, level, message string) *sarif.Result {
	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(rec.Path)),
	)
	result := sarif.NewRuleResult(ruleID).
		WithMessage(sarif.NewTextMessage(message)).
		WithLevel(level).
		WithLocations([]*sarif.Location{location})
	result.PropertyBag = *sarif.NewPropertyBag()
	result.Add("fingerprint", rec.Fingerprint)
	return result
}

// WriteSARIF writes the summary as a SARIF document to w.
func WriteSARIF(w io.Writer, s *Summary, rules []RuleInfo) error {
	reportSarif, err := BuildSARIF(s, rules)
	if err != nil {
		return err
	}
	if err := reportSarif.PrettyWrite(w); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	return nil
}
