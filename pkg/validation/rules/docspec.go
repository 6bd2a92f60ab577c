package rules

import (
	"fmt"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/jurisdiction"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the document specification family.
const (
	RuleDocRefDuplicate   = "DOC-001"
	RuleDocTypeInvalid    = "DOC-002"
	RuleDocTypeMismatch   = "DOC-003"
	RuleCorrDocRefMissing = "DOC-004"
	RuleCorrDocRefPresent = "DOC-005"
	RuleDocRefPrefix      = "DOC-006"
)

// DocSpec validates the per-record DocSpec blocks: docRefId uniqueness,
// indicator codes, and correction linkage.
type DocSpec struct{}

func NewDocSpec() *DocSpec { return &DocSpec{} }

func (v *DocSpec) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "DOC",
		Category:        findings.CategoryDocSpec,
		DefaultSeverity: findings.SeverityError,
		Enabled:         true,
		Description:     "record metadata: docRefId uniqueness, docTypeIndic consistency, correction references",
	}
}

func (v *DocSpec) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result
	msgIndic := ctx.Report.MessageSpec.MessageTypeIndic

	seen := make(map[string]string) // docRefId → xpath of first occurrence
	for _, d := range docSpecs(ctx.Report) {
		spec := d.spec

		if spec.DocRefID != "" {
			if first, dup := seen[spec.DocRefID]; dup {
				r := res(RuleDocRefDuplicate, findings.CategoryDocSpec, findings.SeverityCritical,
					fmt.Sprintf("DocRefId %q is not unique within the document", spec.DocRefID), d.xpath)
				r.Details = map[string]any{"doc_ref_id": spec.DocRefID, "first_seen": first}
				out = append(out, r)
			} else {
				seen[spec.DocRefID] = d.xpath
			}
			out = append(out, checkDocRefPrefix(spec.DocRefID, d.xpath)...)
		}

		if !spec.DocTypeIndic.Known() {
			out = append(out, res(RuleDocTypeInvalid, findings.CategoryDocSpec, findings.SeverityError,
				fmt.Sprintf("DocTypeIndic %q is not a defined OECD code", string(spec.DocTypeIndic)), d.xpath))
			continue
		}

		out = append(out, checkIndicConsistency(msgIndic, spec, d.xpath)...)
		out = append(out, checkCorrectionRefs(spec, d.xpath)...)
	}
	return out
}

// checkIndicConsistency enforces that record indicators agree with the
// message type: new data only in new-submission messages, corrections
// and deletions only in correction messages.
func checkIndicConsistency(msgIndic cbc.MessageTypeIndic, spec cbc.DocSpec, xpath string) []findings.Result {
	if !msgIndic.Known() {
		// The message-level rule already reports this; without a valid
		// message indicator there is nothing to compare against.
		return nil
	}
	var bad bool
	switch msgIndic {
	case cbc.MessageTypeNewData:
		bad = !spec.DocTypeIndic.IsNewData()
	case cbc.MessageTypeCorrection:
		bad = spec.DocTypeIndic.IsNewData()
	}
	if !bad {
		return nil
	}
	r := res(RuleDocTypeMismatch, findings.CategoryDocSpec, findings.SeverityCritical,
		fmt.Sprintf("DocTypeIndic %s is not allowed in a %s message", spec.DocTypeIndic, msgIndic), xpath)
	r.Details = map[string]any{"doc_type_indic": string(spec.DocTypeIndic), "message_type_indic": string(msgIndic)}
	return []findings.Result{r}
}

// checkCorrectionRefs enforces the correction linkage fields: required
// for corrections and deletions, forbidden for new data.
func checkCorrectionRefs(spec cbc.DocSpec, xpath string) []findings.Result {
	var out []findings.Result
	switch {
	case spec.DocTypeIndic.IsCorrection() || spec.DocTypeIndic.IsDeletion():
		if spec.CorrDocRefID == "" {
			out = append(out, res(RuleCorrDocRefMissing, findings.CategoryDocSpec, findings.SeverityError,
				fmt.Sprintf("DocTypeIndic %s requires a CorrDocRefId", spec.DocTypeIndic), xpath))
		}
	case spec.DocTypeIndic.IsNewData():
		if spec.CorrDocRefID != "" || spec.CorrMessageRefID != "" {
			out = append(out, res(RuleCorrDocRefPresent, findings.CategoryDocSpec, findings.SeverityError,
				fmt.Sprintf("DocTypeIndic %s must not carry correction references", spec.DocTypeIndic), xpath))
		}
	}
	return out
}

// checkDocRefPrefix expects docRefIds to begin with an uppercase
// two-letter country code. Lowercase or absent prefixes get a dedicated
// finding rather than the generic format rule.
func checkDocRefPrefix(docRefID, xpath string) []findings.Result {
	if len(docRefID) >= 2 {
		prefix := docRefID[:2]
		if isUpperAlpha(prefix) && jurisdiction.Valid(prefix) {
			return nil
		}
	}
	r := res(RuleDocRefPrefix, findings.CategoryDocSpec, findings.SeverityWarning,
		fmt.Sprintf("DocRefId %q does not begin with an uppercase two-letter country code", docRefID), xpath)
	r.Suggestion = "start the DocRefId with the reporting jurisdiction's ISO 3166-1 alpha-2 code"
	return []findings.Result{r}
}

func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return len(s) > 0
}
