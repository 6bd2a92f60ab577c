package validation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/secxml"
	"github.com/clearline-labs/cbcvalidate/pkg/transform"
)

// RuleParseFailure is the single critical finding emitted when the
// document survives the security screen but cannot be mapped onto the
// CbC envelope.
const RuleParseFailure = "PARSE-001"

// Engine runs the full pipeline for one document: security screen,
// transform, context build, validator execution, aggregation. An Engine
// is immutable after construction and safe for concurrent use; each
// Validate call is self-contained.
type Engine struct {
	validators []Validator
	logger     *slog.Logger
	clock      func() time.Time
	newID      func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger. A nil logger means silent
// operation.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the clock for testing.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator overrides report ID generation for testing.
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine builds an engine over an explicit, ordered validator list.
func NewEngine(validators []Validator, opts ...EngineOption) *Engine {
	e := &Engine{
		validators: validators,
		clock:      time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate runs the pipeline over one raw document. It never returns an
// error: adversarial or malformed input yields a report whose findings
// describe the problem.
func (e *Engine) Validate(raw string, fileName string, opts Options) *findings.ValidationReport {
	started := e.clock()
	var results []findings.Result

	// Stage 1: security and well-formedness screen.
	readerResults := secxml.Scan(raw)
	results = append(results, readerResults...)

	if findings.HasCritical(readerResults) {
		e.log(fileName, "document rejected by security screen", len(readerResults))
		return e.finalize(fileName, int64(len(raw)), started, results, 0, opts)
	}

	// Stage 2: transform into the canonical model.
	report, err := transform.Parse(raw, fileName)
	if err != nil {
		results = append(results, findings.Result{
			RuleID:   RuleParseFailure,
			Category: findings.CategoryStructure,
			Severity: findings.SeverityCritical,
			Message:  err.Error(),
		})
		e.log(fileName, "document failed envelope parse", len(results))
		return e.finalize(fileName, int64(len(raw)), started, results, 0, opts)
	}

	// Stage 3: context and validator execution.
	ctx := NewContext(report, opts)
	passed := 0
	for _, v := range e.validators {
		md := v.Metadata()
		if !md.Enabled || opts.RuleSkipped(md.ID) || !opts.CategoryEnabled(md.Category) {
			continue
		}
		if md.Category == findings.CategorySafeHarbour && !opts.EnablePillar2 {
			continue
		}

		batch := v.Execute(ctx)
		if len(batch) == 0 {
			passed++
			if opts.IncludePassed {
				results = append(results, findings.Result{
					RuleID:   md.ID,
					Category: md.Category,
					Severity: findings.SeverityInfo,
					Message:  "all checks passed",
				})
			}
			continue
		}
		results = append(results, batch...)

		if opts.FailFast && findings.HasCritical(batch) {
			e.log(fileName, "fail-fast stop after critical finding", len(results))
			break
		}
	}

	return e.finalize(fileName, report.FileSize, started, results, passed, opts)
}

// finalize applies the severity filter, computes summaries, truncates if
// requested, and renders the report artifact.
func (e *Engine) finalize(fileName string, fileSize int64, started time.Time, results []findings.Result, passed int, opts Options) *findings.ValidationReport {
	if opts.MinSeverity != "" {
		kept := results[:0:0]
		for _, r := range results {
			if r.Severity.AtLeast(opts.MinSeverity) {
				kept = append(kept, r)
			}
		}
		results = kept
	}
	if results == nil {
		results = []findings.Result{}
	}

	report := &findings.ValidationReport{
		ReportID:   e.newID(),
		FileName:   fileName,
		FileSize:   fileSize,
		StartedAt:  started,
		ByCategory: make(map[findings.Category]int),
		Results:    results,
	}
	for _, r := range results {
		report.Summary.Add(r.Severity)
		report.ByCategory[r.Category]++
	}
	report.Summary.Passed = passed
	report.IsValid = report.Summary.Critical == 0

	if opts.MaxIssues > 0 && len(report.Results) > opts.MaxIssues {
		report.Results = report.Results[:opts.MaxIssues]
		report.Truncated = true
	}

	report.ContentHash = contentHash(report.Summary, report.Results)
	report.Duration = e.clock().Sub(started)
	return report
}

// contentHash is the SHA-256 of the canonical (RFC 8785) JSON encoding
// of the summary and result list.
func contentHash(summary findings.Summary, results []findings.Result) string {
	payload, err := json.Marshal(struct {
		Summary findings.Summary  `json:"summary"`
		Results []findings.Result `json:"results"`
	}{summary, results})
	if err != nil {
		return ""
	}
	canonical, err := jcs.Transform(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func (e *Engine) log(fileName, msg string, resultCount int) {
	if e.logger == nil {
		return
	}
	e.logger.Info(msg, slog.String("file", fileName), slog.Int("findings", resultCount))
}
