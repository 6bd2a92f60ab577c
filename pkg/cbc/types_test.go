package cbc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAmountPredicates(t *testing.T) {
	require.True(t, Amount{Raw: "0", Valid: true}.IsZero())
	require.True(t, Amount{Raw: "-5", Value: -5, Valid: true}.Negative())
	require.True(t, Amount{Raw: "5", Value: 5, Valid: true}.Positive())

	// Unparsed amounts satisfy none of the predicates.
	broken := Amount{Raw: "n/a"}
	require.False(t, broken.IsZero())
	require.False(t, broken.Negative())
	require.False(t, broken.Positive())
}

func TestDateFieldFiscalYear(t *testing.T) {
	d := DateField{Raw: "2024-12-31", Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}
	require.True(t, d.Parsed())
	require.Equal(t, 2024, d.FiscalYear())

	require.False(t, DateField{Raw: "unknown"}.Parsed())
	require.Zero(t, DateField{Raw: "unknown"}.FiscalYear())
}

func TestDocSpecsOrder(t *testing.T) {
	r := &ParsedCbcReport{
		CbcBody: CbcBody{
			ReportingEntity: &ReportingEntity{DocSpec: DocSpec{DocRefID: "RE"}},
			Reports: []CbcReport{
				{DocSpec: DocSpec{DocRefID: "R1"}},
				{DocSpec: DocSpec{DocRefID: "R2"}},
			},
			AdditionalInfo: []AdditionalInfo{{DocSpec: DocSpec{DocRefID: "AI"}}},
		},
	}

	var ids []string
	for _, spec := range r.DocSpecs() {
		ids = append(ids, spec.DocRefID)
	}
	require.Equal(t, []string{"RE", "R1", "R2", "AI"}, ids)
}

func TestSummaryAmountsSweep(t *testing.T) {
	s := Summary{TangibleAssets: Amount{Raw: "1", Value: 1, Valid: true}}
	amounts := s.Amounts()
	require.Len(t, amounts, 9)
	require.Equal(t, 1.0, amounts[len(amounts)-1].Value)
}
