package validation

import "github.com/clearline-labs/cbcvalidate/pkg/findings"

// Options controls one validation run. The zero value validates
// everything except Pillar 2 screening; DefaultOptions enables that too.
type Options struct {
	// Jurisdictions restricts jurisdiction-level rules to the listed
	// country codes. Empty means all.
	Jurisdictions []string `json:"jurisdictions,omitempty"`

	// EnablePillar2 toggles the transitional safe harbour screening.
	EnablePillar2 bool `json:"enable_pillar2"`

	// FailFast stops the pipeline at the first critical finding.
	FailFast bool `json:"fail_fast"`

	// MaxIssues truncates the report's result list when nonzero.
	// Summary counts are never truncated.
	MaxIssues int `json:"max_issues,omitempty"`

	// MinSeverity drops findings below the given severity.
	MinSeverity findings.Severity `json:"min_severity,omitempty"`

	// Categories restricts execution to validators in the listed
	// categories. Empty means all.
	Categories []findings.Category `json:"categories,omitempty"`

	// SkipRules disables individual validators by ID.
	SkipRules []string `json:"skip_rules,omitempty"`

	// IncludePassed emits an info result for every validator that ran
	// clean.
	IncludePassed bool `json:"include_passed"`

	// TestMode accepts OECD1x test-data indicators without findings.
	TestMode bool `json:"test_mode"`
}

// DefaultOptions returns the options used when the caller passes none.
func DefaultOptions() Options {
	return Options{EnablePillar2: true}
}

// RuleSkipped reports whether a validator ID is on the skip list.
func (o Options) RuleSkipped(id string) bool {
	for _, s := range o.SkipRules {
		if s == id {
			return true
		}
	}
	return false
}

// CategoryEnabled reports whether a category passes the category filter.
func (o Options) CategoryEnabled(cat findings.Category) bool {
	if len(o.Categories) == 0 {
		return true
	}
	for _, c := range o.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// JurisdictionEnabled reports whether a country code passes the
// jurisdiction filter.
func (o Options) JurisdictionEnabled(code string) bool {
	if len(o.Jurisdictions) == 0 {
		return true
	}
	for _, j := range o.Jurisdictions {
		if j == code {
			return true
		}
	}
	return false
}
