// Package findings defines the result model shared by every stage of the
// CbC validation pipeline: individual findings, severity and category
// taxonomies, and the final validation report.
package findings

import "time"

// Severity grades a finding. Only critical findings make a report
// invalid; warnings and info are advisory.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// rank orders severities from most to least severe. Unknown severities
// rank below info so filters never drop real findings by accident.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// AtLeast reports whether s is at least as severe as min. An empty min
// matches everything.
func (s Severity) AtLeast(min Severity) bool {
	if min == "" {
		return true
	}
	return s.rank() >= min.rank()
}

// Category groups rules by the concern they check.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryStructure   Category = "structure"
	CategoryMessageSpec Category = "message_spec"
	CategoryDocSpec     Category = "doc_spec"
	CategoryTIN         Category = "tin"
	CategoryDataQuality Category = "data_quality"
	CategoryCurrency    Category = "currency"
	CategorySafeHarbour Category = "safe_harbour"
)

// Result is one finding produced by the reader, the transformer, or a
// rule validator.
type Result struct {
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// XPath locates the finding in the source document, when known.
	XPath string `json:"xpath,omitempty"`

	// Details carries structured values for machine consumption
	// (thresholds, observed values, jurisdiction codes).
	Details map[string]any `json:"details,omitempty"`

	Suggestion string `json:"suggestion,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

// Summary holds per-severity counts for one report.
type Summary struct {
	Critical int `json:"critical"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Passed   int `json:"passed"`
	Total    int `json:"total"`
}

// Add counts one finding.
func (s *Summary) Add(sev Severity) {
	s.Total++
	switch sev {
	case SeverityCritical:
		s.Critical++
	case SeverityError:
		s.Errors++
	case SeverityWarning:
		s.Warnings++
	case SeverityInfo:
		s.Info++
	}
}

// ValidationReport is the final artifact returned to the caller.
type ValidationReport struct {
	ReportID  string        `json:"report_id"`
	FileName  string        `json:"file_name"`
	FileSize  int64         `json:"file_size"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// IsValid is true iff Summary.Critical == 0.
	IsValid    bool             `json:"is_valid"`
	Summary    Summary          `json:"summary"`
	ByCategory map[Category]int `json:"by_category"`
	Results    []Result         `json:"results"`

	// ContentHash is the SHA-256 of the canonical JSON form of Results
	// and Summary, for downstream integrity checks.
	ContentHash string `json:"content_hash,omitempty"`

	// Truncated is set when MaxIssues cut the Results slice. Summary
	// and ByCategory always reflect the full finding set.
	Truncated bool `json:"truncated,omitempty"`
}

// HasCritical reports whether any result in the slice is critical.
func HasCritical(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
