package validation

import "github.com/clearline-labs/cbcvalidate/pkg/findings"

// Metadata describes one validator in the registered set.
type Metadata struct {
	// ID is the validator's stable identifier, also used as the prefix
	// of the rule IDs it emits (MSG, DOC, TIN, ...).
	ID string `json:"id"`

	Category        findings.Category `json:"category"`
	DefaultSeverity findings.Severity `json:"default_severity"`

	// Enabled validators run by default; disabled ones only run when a
	// profile turns them on.
	Enabled bool `json:"enabled"`

	Description string `json:"description,omitempty"`
}

// Validator is one independent, stateless rule family. Execute must be a
// pure function of the context: same context and options, same findings.
// It must never fail on absent optional input; a rule whose inputs are
// missing simply produces nothing.
type Validator interface {
	Metadata() Metadata
	Execute(ctx *Context) []findings.Result
}
