package rules

import (
	"fmt"
	"math"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Rule IDs for the cross-field data quality family.
const (
	RuleTaxDiscrepancy    = "DQ-001"
	RuleTaxOppositeSigns  = "DQ-002"
	RuleNoRevenueStaff    = "DQ-003"
	RuleRevenueNoStaff    = "DQ-004"
	RuleMarginOver100     = "DQ-005"
	RuleLossOverRevenue   = "DQ-006"
	RuleProfitNegativeTax = "DQ-007"
	RuleLossPositiveTax   = "DQ-008"
	RuleManufacturingLean = "DQ-009"
	RuleHoldingHeavy      = "DQ-010"
	RuleAssetActivityZero = "DQ-011"
	RuleHoldingRelatedRev = "DQ-012"
	RuleProfitNoHeadcount = "DQ-013"
	RuleAllNegative       = "DQ-014"
)

// Heuristic thresholds. These flag rows for human review; none of them
// affect report validity.
const (
	// taxDiscrepancyRatio flags tax paid vs accrued when the gap
	// exceeds half of the larger magnitude.
	taxDiscrepancyRatio = 0.5

	// largeRevenue is the floor for "a business this size should have
	// employees" and for the headcount-vs-profit heuristics.
	largeRevenue = 10_000_000

	// manufacturingAssetFloor: manufacturing rows with tangible assets
	// below this share of revenue look like misreported assets.
	manufacturingAssetFloor = 0.02

	// holdingAssetCeiling: pure holding rows with tangible assets above
	// this share of revenue look like misclassified activity.
	holdingAssetCeiling = 0.25

	// relatedRevenueShare flags holding-only rows whose revenue is
	// almost entirely related-party (dividend exclusion screening).
	relatedRevenueShare = 0.9

	// profitNoHeadcountMax: profit above largeRevenue with fewer
	// employees than this suggests profit shifted without substance.
	profitNoHeadcountMax = 10
)

// DataQuality runs the cross-field plausibility heuristics per
// jurisdiction. Every rule skips rows whose inputs did not parse.
type DataQuality struct{}

func NewDataQuality() *DataQuality { return &DataQuality{} }

func (v *DataQuality) Metadata() validation.Metadata {
	return validation.Metadata{
		ID:              "DQ",
		Category:        findings.CategoryDataQuality,
		DefaultSeverity: findings.SeverityWarning,
		Enabled:         true,
		Description:     "cross-field plausibility heuristics per jurisdiction",
	}
}

func (v *DataQuality) Execute(ctx *validation.Context) []findings.Result {
	var out []findings.Result
	for _, j := range ctx.Jurisdictions() {
		entities := ctx.Report.CbcBody.Reports[j.Index].ConstEntities
		out = append(out, checkTaxConsistency(j)...)
		out = append(out, checkRevenueEmployees(j)...)
		out = append(out, checkProfitConsistency(j)...)
		out = append(out, checkActivityAssets(j, entities)...)
		out = append(out, checkDividendExclusion(j, entities)...)
		out = append(out, checkSignConvention(j)...)
	}
	return out
}

func warn(rule string, j validation.JurisdictionReference, msg string) findings.Result {
	r := res(rule, findings.CategoryDataQuality, findings.SeverityWarning,
		fmt.Sprintf("%s: %s", j.CountryCode, msg), j.XPath()+"/Summary")
	r.Details = map[string]any{"jurisdiction": j.CountryCode}
	return r
}

func checkTaxConsistency(j validation.JurisdictionReference) []findings.Result {
	paid, accrued := j.Summary.TaxPaid, j.Summary.TaxAccrued
	if !paid.Valid || !accrued.Valid {
		return nil
	}
	if paid.Value == 0 && accrued.Value == 0 {
		return nil
	}

	var out []findings.Result
	larger := math.Max(math.Abs(paid.Value), math.Abs(accrued.Value))
	if gap := math.Abs(paid.Value - accrued.Value); larger > 0 && gap/larger > taxDiscrepancyRatio {
		out = append(out, warn(RuleTaxDiscrepancy, j,
			fmt.Sprintf("tax paid (%.0f) and tax accrued (%.0f) differ by more than %.0f%%",
				paid.Value, accrued.Value, taxDiscrepancyRatio*100)))
	}
	if (paid.Value > 0 && accrued.Value < 0) || (paid.Value < 0 && accrued.Value > 0) {
		out = append(out, warn(RuleTaxOppositeSigns, j,
			fmt.Sprintf("tax paid (%.0f) and tax accrued (%.0f) have opposite signs", paid.Value, accrued.Value)))
	}
	return out
}

func checkRevenueEmployees(j validation.JurisdictionReference) []findings.Result {
	revenue, employees := j.Summary.TotalRevenues, j.Summary.NbEmployees
	if !revenue.Valid || !employees.Valid {
		return nil
	}
	switch {
	case revenue.Value == 0 && employees.Value > 0:
		return []findings.Result{warn(RuleNoRevenueStaff, j,
			fmt.Sprintf("zero revenue reported with %d employees", employees.Value))}
	case revenue.Value >= largeRevenue && employees.Value == 0:
		return []findings.Result{warn(RuleRevenueNoStaff, j,
			fmt.Sprintf("revenue of %.0f reported with zero employees", revenue.Value))}
	}
	return nil
}

func checkProfitConsistency(j validation.JurisdictionReference) []findings.Result {
	var out []findings.Result
	profit := j.Summary.ProfitOrLoss
	revenue := j.Summary.TotalRevenues
	paid, accrued := j.Summary.TaxPaid, j.Summary.TaxAccrued

	if profit.Valid && revenue.Valid && revenue.Value > 0 {
		if profit.Value > revenue.Value {
			margin := profit.Value / revenue.Value * 100
			out = append(out, warn(RuleMarginOver100, j,
				fmt.Sprintf("profit margin of %.1f%% exceeds 100%% of revenue", margin)))
		}
		if profit.Value < 0 && math.Abs(profit.Value) > revenue.Value {
			out = append(out, warn(RuleLossOverRevenue, j,
				fmt.Sprintf("loss of %.0f exceeds total revenue of %.0f", math.Abs(profit.Value), revenue.Value)))
		}
	}

	if profit.Positive() && (paid.Negative() || accrued.Negative()) {
		out = append(out, warn(RuleProfitNegativeTax, j,
			"positive profit reported together with a tax refund (negative tax)"))
	}
	if profit.Negative() && paid.Positive() {
		out = append(out, warn(RuleLossPositiveTax, j,
			fmt.Sprintf("loss of %.0f reported together with tax paid of %.0f", math.Abs(profit.Value), paid.Value)))
	}
	return out
}

// activityProfile summarizes the declared business activities of a
// jurisdiction's entities.
type activityProfile struct {
	manufacturing  bool
	assetIntensive bool
	holdingOnly    bool
	anyActivity    bool
}

func profileActivities(entities []cbc.ConstituentEntity) activityProfile {
	p := activityProfile{holdingOnly: true}
	for _, e := range entities {
		for _, a := range e.BizActivities {
			p.anyActivity = true
			if a == cbc.ActivityManufacturing {
				p.manufacturing = true
			}
			if a.AssetIntensive() {
				p.assetIntensive = true
			}
			if !a.IsHolding() && a != cbc.ActivityDormant {
				p.holdingOnly = false
			}
		}
	}
	if !p.anyActivity {
		p.holdingOnly = false
	}
	return p
}

func checkActivityAssets(j validation.JurisdictionReference, entities []cbc.ConstituentEntity) []findings.Result {
	assets := j.Summary.TangibleAssets
	revenue := j.Summary.TotalRevenues
	if !assets.Valid {
		return nil
	}
	p := profileActivities(entities)

	var out []findings.Result
	if p.assetIntensive && assets.Value == 0 {
		out = append(out, warn(RuleAssetActivityZero, j,
			"asset-intensive activity declared with zero tangible assets"))
	}
	if revenue.Valid && revenue.Value > 0 {
		if p.manufacturing && assets.Value >= 0 && assets.Value < revenue.Value*manufacturingAssetFloor {
			out = append(out, warn(RuleManufacturingLean, j,
				fmt.Sprintf("manufacturing activity with tangible assets below %.0f%% of revenue",
					manufacturingAssetFloor*100)))
		}
		if p.holdingOnly && assets.Value > revenue.Value*holdingAssetCeiling {
			out = append(out, warn(RuleHoldingHeavy, j,
				fmt.Sprintf("pure holding activity with tangible assets above %.0f%% of revenue",
					holdingAssetCeiling*100)))
		}
	}
	return out
}

// checkDividendExclusion screens for profit that is likely excluded
// dividend income: holding-only rows funded by related parties, and
// outsized profit with no workforce.
func checkDividendExclusion(j validation.JurisdictionReference, entities []cbc.ConstituentEntity) []findings.Result {
	var out []findings.Result
	p := profileActivities(entities)
	related, total := j.Summary.RelatedRevenues, j.Summary.TotalRevenues
	profit, employees := j.Summary.ProfitOrLoss, j.Summary.NbEmployees

	if p.holdingOnly && related.Valid && total.Valid && total.Value > 0 &&
		related.Value/total.Value > relatedRevenueShare {
		out = append(out, warn(RuleHoldingRelatedRev, j,
			fmt.Sprintf("holding-only activity with %.0f%% related-party revenue; dividends may be included",
				related.Value/total.Value*100)))
	}
	if profit.Valid && employees.Valid &&
		profit.Value >= largeRevenue && employees.Value < profitNoHeadcountMax {
		out = append(out, warn(RuleProfitNoHeadcount, j,
			fmt.Sprintf("profit of %.0f with only %d employees", profit.Value, employees.Value)))
	}
	return out
}

// checkSignConvention flags rows where every monetary summary value is
// negative, the signature of inverted sign conventions in the source
// system.
func checkSignConvention(j validation.JurisdictionReference) []findings.Result {
	for _, a := range j.Summary.Amounts() {
		if !a.Valid || a.Value >= 0 {
			return nil
		}
	}
	return []findings.Result{warn(RuleAllNegative, j,
		"every summary value is negative; the sign convention looks inverted")}
}
