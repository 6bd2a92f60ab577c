package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

func contextForYear(year int, reports ...cbc.CbcReport) *validation.Context {
	ms := baseMessageSpec()
	ms.ReportingPeriod = isoDate(fmt.Sprintf("%d-12-31", year))
	return validation.NewContext(reportWith(ms, reports...), validation.DefaultOptions())
}

func passedTests(t *testing.T, r findings.Result) []string {
	t.Helper()
	passed, ok := r.Details["passed_tests"].([]string)
	require.True(t, ok)
	return passed
}

func TestSafeHarbourPassViaSimplifiedETR(t *testing.T) {
	// DE, 50M revenue, 5M profit, 1M tax accrued: a 20% ETR clears the
	// 15% floor for 2024.
	ctx := contextForYear(2024, jurisdictionReport("DE", baseSummary()))

	results := NewSafeHarbour().Execute(ctx)

	pass := byRule(results, RuleSafeHarbourPass)
	require.Len(t, pass, 1)
	require.Equal(t, []string{TestSimplifiedETR}, passedTests(t, pass[0]))
	require.InDelta(t, 0.20, pass[0].Details["etr"], 1e-9)

	summary := byRule(results, RuleSafeHarbourSummary)
	require.Len(t, summary, 1)
	require.Equal(t, 1, summary[0].Details["eligible"])
	require.Equal(t, 0, summary[0].Details["ineligible"])
}

func TestDeMinimisThresholdsAreExclusive(t *testing.T) {
	build := func(revenue, profit float64) cbc.Summary {
		s := baseSummary()
		s.TotalRevenues = amt(revenue, "EUR")
		s.ProfitOrLoss = amt(profit, "EUR")
		s.TaxPaid = amt(0, "EUR")
		s.TaxAccrued = amt(0, "EUR")
		s.NbEmployees = headcount(0)
		s.TangibleAssets = amt(0, "EUR")
		return s
	}

	cases := []struct {
		name     string
		revenue  float64
		profit   float64
		eligible bool
	}{
		{"under both thresholds", 9_999_999, 999_999, true},
		{"revenue at threshold", 10_000_000, 999_999, false},
		{"profit at threshold", 9_999_999, 1_000_000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := contextForYear(2024, jurisdictionReport("DE", build(tc.revenue, tc.profit)))
			results := NewSafeHarbour().Execute(ctx)
			if tc.eligible {
				pass := byRule(results, RuleSafeHarbourPass)
				require.Len(t, pass, 1)
				require.Equal(t, []string{TestDeMinimis}, passedTests(t, pass[0]))
			} else {
				require.Empty(t, byRule(results, RuleSafeHarbourPass))
				require.Len(t, byRule(results, RuleSafeHarbourFail), 1)
			}
		})
	}
}

func TestSimplifiedETRThresholdIsInclusive(t *testing.T) {
	build := func(taxAccrued float64) cbc.Summary {
		s := baseSummary()
		s.ProfitOrLoss = amt(1_000_000, "EUR")
		s.TaxPaid = amt(taxAccrued, "EUR")
		s.TaxAccrued = amt(taxAccrued, "EUR")
		s.NbEmployees = headcount(0)
		s.TangibleAssets = amt(0, "EUR")
		return s
	}

	exact := contextForYear(2024, jurisdictionReport("DE", build(150_000)))
	pass := byRule(NewSafeHarbour().Execute(exact), RuleSafeHarbourPass)
	require.Len(t, pass, 1)
	require.Equal(t, []string{TestSimplifiedETR}, passedTests(t, pass[0]))

	below := contextForYear(2024, jurisdictionReport("DE", build(149_999)))
	require.Empty(t, byRule(NewSafeHarbour().Execute(below), RuleSafeHarbourPass))
}

func TestETRThresholdStepsUpByYear(t *testing.T) {
	// A 15.5% ETR clears the 2024 floor but not the 16% floor for 2025.
	build := func() cbc.Summary {
		s := baseSummary()
		s.ProfitOrLoss = amt(1_000_000, "EUR")
		s.TaxPaid = amt(155_000, "EUR")
		s.TaxAccrued = amt(155_000, "EUR")
		s.NbEmployees = headcount(0)
		s.TangibleAssets = amt(0, "EUR")
		return s
	}

	in2024 := NewSafeHarbour().Execute(contextForYear(2024, jurisdictionReport("DE", build())))
	require.Len(t, byRule(in2024, RuleSafeHarbourPass), 1)

	in2025 := NewSafeHarbour().Execute(contextForYear(2025, jurisdictionReport("DE", build())))
	require.Empty(t, byRule(in2025, RuleSafeHarbourPass))
	require.Len(t, byRule(in2025, RuleSafeHarbourFail), 1)
}

func TestRoutineProfitsCarveOut(t *testing.T) {
	// LU average payroll 72k: 100 employees at the 10% payroll rate plus
	// 10M assets at 8% give a 1.52M carve-out.
	s := baseSummary()
	s.TotalRevenues = amt(20_000_000, "EUR")
	s.ProfitOrLoss = amt(1_500_000, "EUR")
	s.TaxPaid = amt(0, "EUR")
	s.TaxAccrued = amt(0, "EUR")
	s.NbEmployees = headcount(100)
	s.TangibleAssets = amt(10_000_000, "EUR")

	ctx := contextForYear(2024, jurisdictionReport("LU", s))
	results := NewSafeHarbour().Execute(ctx)

	pass := byRule(results, RuleSafeHarbourPass)
	require.Len(t, pass, 1)
	require.Equal(t, []string{TestRoutineProfits}, passedTests(t, pass[0]))
	require.InDelta(t, 1_520_000, pass[0].Details["sbie_carve_out"], 1e-6)
}

func TestLossJurisdictionPassesRoutineProfits(t *testing.T) {
	s := baseSummary()
	s.ProfitOrLoss = amt(-500_000, "EUR")
	s.TaxPaid = amt(0, "EUR")
	s.TaxAccrued = amt(200_000, "EUR")
	s.NbEmployees = headcount(0)
	s.TangibleAssets = amt(0, "EUR")

	ctx := contextForYear(2024, jurisdictionReport("DE", s))
	results := NewSafeHarbour().Execute(ctx)

	// ETR is defined as zero for a loss, so only the routine profits
	// test can carry this jurisdiction.
	pass := byRule(results, RuleSafeHarbourPass)
	require.Len(t, pass, 1)
	require.Equal(t, []string{TestRoutineProfits}, passedTests(t, pass[0]))
}

func TestFailAllThreeTests(t *testing.T) {
	s := baseSummary()
	s.TaxPaid = amt(100_000, "EUR")
	s.TaxAccrued = amt(100_000, "EUR") // 2% ETR

	ctx := contextForYear(2024, jurisdictionReport("DE", s))
	results := NewSafeHarbour().Execute(ctx)

	fail := byRule(results, RuleSafeHarbourFail)
	require.Len(t, fail, 1)
	require.Equal(t, findings.SeverityWarning, fail[0].Severity)
	require.NotEmpty(t, fail[0].Suggestion)

	summary := byRule(results, RuleSafeHarbourSummary)
	require.Len(t, summary, 1)
	require.Equal(t, 0, summary[0].Details["eligible"])
	require.Equal(t, 1, summary[0].Details["ineligible"])
}

func TestFiscalYearBeforeWindowSkipsScreening(t *testing.T) {
	ctx := contextForYear(2023, jurisdictionReport("DE", baseSummary()))
	results := NewSafeHarbour().Execute(ctx)

	require.Len(t, byRule(results, RuleSafeHarbourPre), 1)
	require.Empty(t, byRule(results, RuleSafeHarbourPass))
	require.Empty(t, byRule(results, RuleSafeHarbourFail))
	require.Empty(t, byRule(results, RuleSafeHarbourSummary))
}

func TestFiscalYearAfterWindowStillScreens(t *testing.T) {
	ctx := contextForYear(2027, jurisdictionReport("DE", baseSummary()))
	results := NewSafeHarbour().Execute(ctx)

	require.Len(t, byRule(results, RuleSafeHarbourEnded), 1)
	// Post-window years fall back to the floor rates and still evaluate.
	require.Len(t, byRule(results, RuleSafeHarbourPass), 1)
}

func TestUnparsedSummarySkipsJurisdiction(t *testing.T) {
	s := cbc.Summary{
		TotalRevenues:  cbc.Amount{Raw: "n/a"},
		ProfitOrLoss:   cbc.Amount{Raw: "n/a"},
		TaxAccrued:     cbc.Amount{Raw: "n/a"},
		NbEmployees:    cbc.Count{Raw: "n/a"},
		TangibleAssets: cbc.Amount{Raw: "n/a"},
	}
	ctx := contextForYear(2024, jurisdictionReport("DE", s))

	require.Empty(t, NewSafeHarbour().Execute(ctx))
}
