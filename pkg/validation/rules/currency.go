package rules

import (
	"fmt"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the currency consistency family.
const (
	RuleMixedRowCurrency    = "CUR-001"
	RuleMixedReportCurrency = "CUR-002"
)

// Currency checks that monetary amounts share one currency code within
// each jurisdiction row and across the whole report.
type Currency struct{}

func NewCurrency() *Currency { return &Currency{} }

func (v *Currency) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "CUR",
		Category:        findings.CategoryCurrency,
		DefaultSeverity: findings.SeverityError,
		Enabled:         true,
		Description:     "single reporting currency per row and per report",
	}
}

func (v *Currency) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result

	// Cross-report consistency runs over all jurisdictions regardless
	// of the filter: a comparison between two rows in different
	// currencies must surface even when only one of them is selected.
	var reportCurrencies []string
	for _, j := range ctx.AllJurisdictions() {
		for _, c := range j.Currencies {
			if !containsString(reportCurrencies, c) {
				reportCurrencies = append(reportCurrencies, c)
			}
		}
	}

	for _, j := range ctx.Jurisdictions() {
		if len(j.Currencies) > 1 {
			r := res(RuleMixedRowCurrency, findings.CategoryCurrency, findings.SeverityError,
				fmt.Sprintf("%s: summary mixes currency codes %s", j.CountryCode, strings.Join(j.Currencies, ", ")),
				j.XPath()+"/Summary")
			r.Details = map[string]any{"jurisdiction": j.CountryCode, "currencies": j.Currencies}
			out = append(out, r)
		}
	}

	if len(reportCurrencies) > 1 {
		r := res(RuleMixedReportCurrency, findings.CategoryCurrency, findings.SeverityWarning,
			fmt.Sprintf("report mixes currency codes across jurisdictions: %s", strings.Join(reportCurrencies, ", ")),
			"/CBC_OECD/CbcBody")
		r.Details = map[string]any{"currencies": reportCurrencies}
		r.Suggestion = "report all amounts in the ultimate parent entity's reporting currency"
		out = append(out, r)
	}
	return out
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
