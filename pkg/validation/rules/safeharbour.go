package rules

import (
	"fmt"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/jurisdiction"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the Pillar 2 transitional safe harbour family.
const (
	RuleSafeHarbourPass    = "P2-001"
	RuleSafeHarbourFail    = "P2-002"
	RuleSafeHarbourPre     = "P2-003"
	RuleSafeHarbourEnded   = "P2-004"
	RuleSafeHarbourSummary = "P2-005"
)

// Test names cited in findings.
const (
	TestDeMinimis      = "de_minimis"
	TestSimplifiedETR  = "simplified_etr"
	TestRoutineProfits = "routine_profits"
)

// Transitional CbCR safe harbour window (fiscal years).
const (
	safeHarbourStartYear = 2024
	safeHarbourEndYear   = 2026
)

// De minimis thresholds, both exclusive: exactly at threshold fails.
const (
	deMinimisRevenue = 10_000_000
	deMinimisProfit  = 1_000_000
)

// etrThresholds is the simplified ETR floor per fiscal year, inclusive:
// exactly at threshold passes. etrDefault applies outside the table.
var etrThresholds = map[int]float64{
	2024: 0.15,
	2025: 0.16,
	2026: 0.17,
}

const etrDefault = 0.15

// sbieRates are the substance-based carve-out rates per fiscal year,
// stepping down across the transition window to the post-window floor.
type sbieRate struct {
	Payroll float64
	Assets  float64
}

var sbieRates = map[int]sbieRate{
	2024: {Payroll: 0.10, Assets: 0.08},
	2025: {Payroll: 0.09, Assets: 0.07},
	2026: {Payroll: 0.08, Assets: 0.06},
}

var sbieFloor = sbieRate{Payroll: 0.05, Assets: 0.05}

func etrThreshold(year int) float64 {
	if t, ok := etrThresholds[year]; ok {
		return t
	}
	return etrDefault
}

func sbieRateFor(year int) sbieRate {
	if r, ok := sbieRates[year]; ok {
		return r
	}
	return sbieFloor
}

// SafeHarbour screens each jurisdiction against the three transitional
// safe harbour tests and accepts on any pass. It never computes top-up
// tax; a jurisdiction failing all three only gets a recommendation to
// run the full GloBE computation.
type SafeHarbour struct{}

func NewSafeHarbour() *SafeHarbour { return &SafeHarbour{} }

func (v *SafeHarbour) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "P2",
		Category:        findings.CategorySafeHarbour,
		DefaultSeverity: findings.SeverityInfo,
		Enabled:         true,
		Description:     "Pillar 2 transitional CbCR safe harbour eligibility screening",
	}
}

func (v *SafeHarbour) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result
	eligible, ineligible := 0, 0

	for _, j := range ctx.Jurisdictions() {
		year := j.FiscalYear
		if year == 0 {
			// No usable reporting period; the message rules report it.
			continue
		}

		if year < safeHarbourStartYear {
			r := res(RuleSafeHarbourPre, findings.CategorySafeHarbour, findings.SeverityInfo,
				fmt.Sprintf("%s: fiscal year %d predates the transitional safe harbour; screening not applicable",
					j.CountryCode, year), j.XPath())
			r.Details = map[string]any{"jurisdiction": j.CountryCode, "fiscal_year": year}
			out = append(out, r)
			continue
		}
		if year > safeHarbourEndYear {
			r := res(RuleSafeHarbourEnded, findings.CategorySafeHarbour, findings.SeverityInfo,
				fmt.Sprintf("%s: the transitional safe harbour period ended after fiscal year %d",
					j.CountryCode, safeHarbourEndYear), j.XPath())
			r.Details = map[string]any{"jurisdiction": j.CountryCode, "fiscal_year": year}
			out = append(out, r)
		}

		outcome := evaluateSafeHarbour(j)
		if outcome.skipped {
			continue
		}
		if len(outcome.passed) > 0 {
			eligible++
			r := res(RuleSafeHarbourPass, findings.CategorySafeHarbour, findings.SeverityInfo,
				fmt.Sprintf("%s qualifies for the transitional safe harbour via %s",
					j.CountryCode, strings.Join(outcome.passed, ", ")), j.XPath())
			r.Details = outcome.details
			r.Details["passed_tests"] = outcome.passed
			out = append(out, r)
			continue
		}
		ineligible++
		r := res(RuleSafeHarbourFail, findings.CategorySafeHarbour, findings.SeverityWarning,
			fmt.Sprintf("%s fails all three safe harbour tests; a full top-up tax computation is required",
				j.CountryCode), j.XPath())
		r.Details = outcome.details
		r.Suggestion = "run the full GloBE computation for this jurisdiction"
		out = append(out, r)
	}

	if eligible+ineligible > 0 {
		r := res(RuleSafeHarbourSummary, findings.CategorySafeHarbour, findings.SeverityInfo,
			fmt.Sprintf("safe harbour screening: %d of %d jurisdiction(s) eligible",
				eligible, eligible+ineligible), "/CBC_OECD/CbcBody")
		r.Details = map[string]any{"eligible": eligible, "ineligible": ineligible}
		out = append(out, r)
	}
	return out
}

type harbourOutcome struct {
	passed  []string
	details map[string]any
	skipped bool
}

// evaluateSafeHarbour runs all three tests and records every pass, so a
// finding can cite the exact test(s) satisfied. Tests whose inputs did
// not parse count as not passed; when no test had usable inputs the
// jurisdiction is skipped entirely.
func evaluateSafeHarbour(j validation.JurisdictionReference) harbourOutcome {
	o := harbourOutcome{details: map[string]any{
		"jurisdiction": j.CountryCode,
		"fiscal_year":  j.FiscalYear,
	}}
	s := j.Summary
	evaluated := 0

	// Test 1: de minimis. Both thresholds exclusive.
	if s.TotalRevenues.Valid && s.ProfitOrLoss.Valid {
		evaluated++
		if s.TotalRevenues.Value < deMinimisRevenue && s.ProfitOrLoss.Value < deMinimisProfit {
			o.passed = append(o.passed, TestDeMinimis)
		}
	}

	// Test 2: simplified ETR. Threshold inclusive; ETR is zero when
	// profit is non-positive.
	if s.ProfitOrLoss.Valid && s.TaxAccrued.Valid {
		evaluated++
		etr := 0.0
		if s.ProfitOrLoss.Value > 0 {
			etr = s.TaxAccrued.Value / s.ProfitOrLoss.Value
		}
		threshold := etrThreshold(j.FiscalYear)
		o.details["etr"] = etr
		o.details["etr_threshold"] = threshold
		if etr >= threshold {
			o.passed = append(o.passed, TestSimplifiedETR)
		}
	}

	// Test 3: routine profits. Profit must not exceed the substance
	// based carve-out.
	if s.ProfitOrLoss.Valid && s.NbEmployees.Valid && s.TangibleAssets.Valid {
		evaluated++
		rate := sbieRateFor(j.FiscalYear)
		payroll := jurisdiction.AveragePayroll(jurisdiction.Normalize(j.CountryCode))
		carveOut := float64(s.NbEmployees.Value)*payroll*rate.Payroll +
			s.TangibleAssets.Value*rate.Assets
		o.details["sbie_carve_out"] = carveOut
		if s.ProfitOrLoss.Value <= carveOut {
			o.passed = append(o.passed, TestRoutineProfits)
		}
	}

	o.skipped = evaluated == 0
	return o
}
