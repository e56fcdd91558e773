// Package audit runs the single-pass pipeline: discovery, classification,
// duplicate grouping and summary.
package audit

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/scan-io-git/dfaudit/internal/classify"
	"github.com/scan-io-git/dfaudit/internal/discovery"
	"github.com/scan-io-git/dfaudit/internal/report"
)

// Options configures one audit run.
type Options struct {
	Root     string
	Targets  []string
	Ignore   []string
	FileName string
	Decode   classify.DecodeMode
	// FailOnError aborts the run when any file cannot be read or decoded.
	// Otherwise such files are logged and left out of the report.
	FailOnError bool
	Patterns    []classify.Definition
}

// Auditor holds the stages of one run.
type Auditor struct {
	finder      *discovery.Finder
	classifier  *classify.Classifier
	failOnError bool
	logger      hclog.Logger
}

// New compiles the pattern table and prepares the stages. An invalid pattern is a fatal error.
func New(opts Options, logger hclog.Logger) (*Auditor, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.With("run_id", uuid.New().String())

	defs := opts.Patterns
	if len(defs) == 0 {
		defs = classify.DefaultDefinitions()
	}
	table, err := classify.Compile(defs)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern table: %w", err)
	}

	finder, err := discovery.New(discovery.Options{
		Root:     opts.Root,
		Targets:  opts.Targets,
		FileName: opts.FileName,
		Ignore:   opts.Ignore,
	}, logger.Named("discovery"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare discovery: %w", err)
	}

	return &Auditor{
		finder:      finder,
		classifier:  classify.New(table, opts.Decode),
		failOnError: opts.FailOnError,
		logger:      logger,
	}, nil
}

// Rules returns SARIF rule metadata for the pattern table.
func (a *Auditor) Rules() []report.RuleInfo {
	table := a.classifier.Table()
	rules := make([]report.RuleInfo, 0, len(table))
	for _, p := range table {
		desc := p.Description
		if desc == "" {
			desc = fmt.Sprintf("Dockerfile matches the %q pattern", p.Name)
		}
		rules = append(rules, report.RuleInfo{Name: p.Name, Description: desc})
	}
	return rules
}

// Run performs a full scan and returns the summary.
func (a *Auditor) Run() (*report.Summary, error) {
	candidates, err := a.finder.Find()
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	a.logger.Debug("files discovered", "count", len(candidates))

	var fileErrs *multierror.Error
	records := make([]*report.Record, 0, len(candidates))
	for _, c := range candidates {
		rec, err := a.classifier.ClassifyFile(c.Path, c.RelPath)
		if err != nil {
			fileErrs = multierror.Append(fileErrs, err)
			if !a.failOnError {
				a.logger.Warn("skipping file", "path", c.RelPath, "error", err)
			}
			continue
		}
		a.logger.Trace("file classified", "path", rec.Path, "fingerprint", rec.Fingerprint, "tags", rec.Tags)
		records = append(records, rec)
	}
	if a.failOnError && fileErrs.ErrorOrNil() != nil {
		return nil, fmt.Errorf("failed to classify %d file(s): %w", len(fileErrs.Errors), fileErrs)
	}

	grouping := report.GroupDuplicates(records)
	summary := report.Summarize(records, grouping, a.classifier.Table().Names())

	a.logger.Info("audit finished",
		"total", summary.Total,
		"duplicates", summary.Duplicates,
		"skipped", len(fileErrs.WrappedErrors()),
	)
	return summary, nil
}
