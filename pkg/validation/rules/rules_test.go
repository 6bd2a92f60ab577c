package rules

import (
	"strconv"
	"time"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// Test fixture builders shared by the rule tests.

func amt(v float64, curr string) cbc.Amount {
	return cbc.Amount{Raw: strconv.FormatFloat(v, 'f', -1, 64), Value: v, Valid: true, Currency: curr}
}

func headcount(n int64) cbc.Count {
	return cbc.Count{Raw: strconv.FormatInt(n, 10), Value: n, Valid: true}
}

func isoDate(s string) cbc.DateField {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return cbc.DateField{Raw: s, Date: t}
}

// baseSummary is a plausible, finding-free jurisdiction summary in EUR.
func baseSummary() cbc.Summary {
	return cbc.Summary{
		UnrelatedRevenues: amt(30_000_000, "EUR"),
		RelatedRevenues:   amt(20_000_000, "EUR"),
		TotalRevenues:     amt(50_000_000, "EUR"),
		ProfitOrLoss:      amt(5_000_000, "EUR"),
		TaxPaid:           amt(1_000_000, "EUR"),
		TaxAccrued:        amt(1_000_000, "EUR"),
		Capital:           amt(10_000_000, "EUR"),
		Earnings:          amt(8_000_000, "EUR"),
		NbEmployees:       headcount(250),
		TangibleAssets:    amt(20_000_000, "EUR"),
	}
}

func jurisdictionReport(country string, summary cbc.Summary, entities ...cbc.ConstituentEntity) cbc.CbcReport {
	return cbc.CbcReport{
		DocSpec: cbc.DocSpec{
			DocTypeIndic: cbc.DocTypeNew,
			DocRefID:     country + "2024REF" + country,
		},
		ResCountryCode: country,
		Summary:        summary,
		ConstEntities:  entities,
	}
}

func baseMessageSpec() cbc.MessageSpec {
	return cbc.MessageSpec{
		TransmittingCountry: "LU",
		ReceivingCountry:    "DE",
		MessageType:         "CBC",
		MessageRefID:        "LU2024CBC000001",
		MessageTypeIndic:    cbc.MessageTypeNewData,
		ReportingPeriod:     isoDate("2024-12-31"),
		Timestamp:           isoDate("2025-03-01"),
	}
}

func reportWith(ms cbc.MessageSpec, reports ...cbc.CbcReport) *cbc.ParsedCbcReport {
	return &cbc.ParsedCbcReport{
		MessageSpec: ms,
		CbcBody: cbc.CbcBody{
			ReportingEntity: &cbc.ReportingEntity{
				Entity: cbc.ConstituentEntity{
					TIN:  cbc.TIN{Value: "12345678901", IssuedBy: "LU"},
					Name: "Group Holdings S.A.",
				},
				ReportingRole: "CBC801",
				DocSpec: cbc.DocSpec{
					DocTypeIndic: cbc.DocTypeNew,
					DocRefID:     "LU2024REENTITY",
				},
			},
			Reports: reports,
		},
		FileName: "test.xml",
	}
}

func contextWith(reports ...cbc.CbcReport) *validation.Context {
	return validation.NewContext(reportWith(baseMessageSpec(), reports...), validation.DefaultOptions())
}

func byRule(results []findings.Result, ruleID string) []findings.Result {
	var out []findings.Result
	for _, r := range results {
		if r.RuleID == ruleID {
			out = append(out, r)
		}
	}
	return out
}
