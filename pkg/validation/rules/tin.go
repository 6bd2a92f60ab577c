package rules

import (
	"fmt"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/jurisdiction"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the generic TIN family.
const (
	RuleTINMissing         = "TIN-001"
	RuleTINIssuedByMissing = "TIN-002"
	RuleTINFormat          = "TIN-003"
	RuleTINNoTIN           = "TIN-004"
	RuleTINIssuedByInvalid = "TIN-005"
)

// tinMinLen is the shortest TIN that is not reported as suspiciously
// short. The shortest real TINs in the exchange network are 4 digits.
const tinMinLen = 4

// placeholder texts seen in live filings instead of a real TIN.
var tinPlaceholders = map[string]struct{}{
	"N/A": {}, "NA": {}, "NONE": {}, "NIL": {}, "UNKNOWN": {}, "XXX": {}, "TBD": {},
}

// TIN validates tax identification numbers: presence, issuing
// jurisdiction, and degenerate value patterns.
type TIN struct{}

func NewTIN() *TIN { return &TIN{} }

func (v *TIN) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "TIN",
		Category:        findings.CategoryTIN,
		DefaultSeverity: findings.SeverityWarning,
		Enabled:         true,
		Description:     "tax identification numbers: presence, issuedBy, format heuristics",
	}
}

func (v *TIN) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result

	if re := ctx.Report.CbcBody.ReportingEntity; re != nil {
		const xpath = "/CBC_OECD/CbcBody/ReportingEntity/Entity/TIN"
		if re.Entity.TIN.Value == "" {
			out = append(out, res(RuleTINMissing, findings.CategoryTIN, findings.SeverityError,
				"reporting entity has no TIN", xpath))
		} else {
			out = append(out, checkTIN(re.Entity.TIN, xpath)...)
		}
	}

	for _, j := range ctx.Jurisdictions() {
		entities := ctx.Report.CbcBody.Reports[j.Index].ConstEntities
		for i, e := range entities {
			xpath := fmt.Sprintf("%s/ConstEntities[%d]/ConstEntity/TIN", j.XPath(), i+1)
			if e.TIN.Value == "" {
				out = append(out, res(RuleTINMissing, findings.CategoryTIN, findings.SeverityWarning,
					fmt.Sprintf("constituent entity %q has no TIN", e.Name), xpath))
				continue
			}
			out = append(out, checkTIN(e.TIN, xpath)...)
		}
	}
	return out
}

// checkTIN runs the shared value/issuedBy checks for one TIN.
func checkTIN(tin cbc.TIN, xpath string) []findings.Result {
	var out []findings.Result
	value := tin.Value

	noTIN := strings.EqualFold(strings.TrimSpace(value), "NOTIN")
	if noTIN {
		out = append(out, res(RuleTINNoTIN, findings.CategoryTIN, findings.SeverityInfo,
			"TIN is the literal NOTIN; accepted, but the jurisdiction may request the real number", xpath))
	} else if reason := degenerateTIN(value); reason != "" {
		r := res(RuleTINFormat, findings.CategoryTIN, findings.SeverityWarning,
			fmt.Sprintf("TIN %q looks invalid: %s", value, reason), xpath)
		r.Details = map[string]any{"reason": reason}
		out = append(out, r)
	}

	switch {
	case tin.IssuedBy == "":
		// NOTIN entries routinely omit issuedBy; only real TINs need it.
		if !noTIN {
			out = append(out, res(RuleTINIssuedByMissing, findings.CategoryTIN, findings.SeverityWarning,
				"TIN has no issuedBy jurisdiction", xpath))
		}
	case !jurisdiction.Valid(tin.IssuedBy):
		out = append(out, res(RuleTINIssuedByInvalid, findings.CategoryTIN, findings.SeverityError,
			fmt.Sprintf("issuedBy %q is not a recognized country code", tin.IssuedBy), xpath))
	}
	return out
}

// degenerateTIN classifies obviously useless TIN values. It returns an
// empty string for plausible values.
func degenerateTIN(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != value {
		return "leading or trailing whitespace"
	}
	if strings.ContainsAny(value, " \t") {
		return "internal whitespace"
	}
	if _, ok := tinPlaceholders[strings.ToUpper(value)]; ok {
		return "placeholder text"
	}
	if len(value) < tinMinLen {
		return fmt.Sprintf("shorter than %d characters", tinMinLen)
	}
	if allSameDigit(value) {
		switch value[0] {
		case '0':
			return "all zeros"
		case '9':
			return "all nines"
		default:
			return "single repeated digit"
		}
	}
	return ""
}

func allSameDigit(s string) bool {
	if len(s) == 0 || s[0] < '0' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
