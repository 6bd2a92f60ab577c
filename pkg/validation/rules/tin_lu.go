package rules

import (
	"fmt"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/jurisdiction"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the Luxembourg TIN family.
const (
	RuleLuTINFormat   = "TIN-LU-001"
	RuleLuTINIssuedBy = "TIN-LU-002"
)

// luTINLengths are the accepted digit counts for Luxembourg national
// identification numbers (matricule): 11 for natural persons, 12 or 13
// for legal entities.
var luTINLengths = map[int]struct{}{11: {}, 12: {}, 13: {}}

// LuxembourgTIN applies the Luxembourg-specific TIN format on top of the
// generic checks: numeric-only, fixed lengths, and issuedBy attribution.
type LuxembourgTIN struct{}

func NewLuxembourgTIN() *LuxembourgTIN { return &LuxembourgTIN{} }

func (v *LuxembourgTIN) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "TIN-LU",
		Category:        findings.CategoryTIN,
		DefaultSeverity: findings.SeverityError,
		Enabled:         true,
		Description:     "Luxembourg TIN format: numeric, 11/12/13 digits, issuedBy LU",
	}
}

func (v *LuxembourgTIN) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result
	for _, j := range ctx.Jurisdictions() {
		inLU := jurisdiction.Normalize(j.CountryCode) == jurisdiction.Luxembourg
		entities := ctx.Report.CbcBody.Reports[j.Index].ConstEntities
		for i, e := range entities {
			xpath := fmt.Sprintf("%s/ConstEntities[%d]/ConstEntity/TIN", j.XPath(), i+1)
			out = append(out, checkLuTIN(e.TIN, inLU, xpath)...)
		}
	}
	return out
}

func checkLuTIN(tin cbc.TIN, residentInLU bool, xpath string) []findings.Result {
	if tin.Value == "" || strings.EqualFold(tin.Value, "NOTIN") {
		return nil
	}

	attributedToLU := tin.IssuedBy == string(jurisdiction.Luxembourg) ||
		(tin.IssuedBy == "" && residentInLU)

	var out []findings.Result
	if attributedToLU {
		if !numericOnly(tin.Value) {
			out = append(out, res(RuleLuTINFormat, findings.CategoryTIN, findings.SeverityError,
				fmt.Sprintf("Luxembourg TIN %q must contain digits only", tin.Value), xpath))
		} else if _, ok := luTINLengths[len(tin.Value)]; !ok {
			r := res(RuleLuTINFormat, findings.CategoryTIN, findings.SeverityError,
				fmt.Sprintf("Luxembourg TIN %q has %d digits; 11, 12 or 13 are accepted", tin.Value, len(tin.Value)), xpath)
			r.Details = map[string]any{"length": len(tin.Value)}
			out = append(out, r)
		}
	}

	if residentInLU && tin.IssuedBy != "" && tin.IssuedBy != string(jurisdiction.Luxembourg) {
		out = append(out, res(RuleLuTINIssuedBy, findings.CategoryTIN, findings.SeverityError,
			fmt.Sprintf("TIN attributed to Luxembourg must carry issuedBy LU, not %q", tin.IssuedBy), xpath))
	}
	return out
}

func numericOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
