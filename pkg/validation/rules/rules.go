// Package rules contains the closed set of CbC rule validators. Each
// validator is stateless, declares its metadata, and emits findings for
// one rule family; the engine runs them in the order returned by
// Default. Validators never fail on absent optional input: a rule whose
// inputs are missing produces nothing for that record.
package rules

import (
	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Default returns the full validator set in execution order. The order
// is part of the report contract: findings appear validator-first, then
// jurisdiction order within a validator.
func Default() []validation.Validator {
	return []validation.Validator{
		NewMessageSpec(),
		NewDocSpec(),
		NewTIN(),
		NewLuxembourgTIN(),
		NewDataQuality(),
		NewCurrency(),
		NewSafeHarbour(),
	}
}

type located struct {
	spec  cbc.DocSpec
	xpath string
}

// docSpecs collects every DocSpec in schema order with its XPath.
func docSpecs(r *cbc.ParsedCbcReport) []located {
	var out []located
	if r.CbcBody.ReportingEntity != nil {
		out = append(out, located{
			spec:  r.CbcBody.ReportingEntity.DocSpec,
			xpath: "/CBC_OECD/CbcBody/ReportingEntity/DocSpec",
		})
	}
	for i := range r.CbcBody.Reports {
		out = append(out, located{
			spec:  r.CbcBody.Reports[i].DocSpec,
			xpath: validation.JurisdictionReference{Index: i}.XPath() + "/DocSpec",
		})
	}
	for i := range r.CbcBody.AdditionalInfo {
		out = append(out, located{
			spec:  r.CbcBody.AdditionalInfo[i].DocSpec,
			xpath: additionalInfoXPath(i) + "/DocSpec",
		})
	}
	return out
}

func additionalInfoXPath(i int) string {
	return "/CBC_OECD/CbcBody/AdditionalInfo[" + itoa(i+1) + "]"
}

// itoa avoids pulling strconv into every rule file for index math.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func res(id string, cat findings.Category, sev findings.Severity, msg, xpath string) findings.Result {
	return findings.Result{RuleID: id, Category: cat, Severity: sev, Message: msg, XPath: xpath}
}
