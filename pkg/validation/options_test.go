package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.True(t, opts.EnablePillar2)
	require.False(t, opts.FailFast)
	require.Empty(t, opts.Jurisdictions)
}

func TestRuleSkipped(t *testing.T) {
	opts := Options{SkipRules: []string{"P2", "DQ"}}
	require.True(t, opts.RuleSkipped("P2"))
	require.False(t, opts.RuleSkipped("TIN"))
}

func TestCategoryEnabled(t *testing.T) {
	require.True(t, Options{}.CategoryEnabled(findings.CategoryTIN))

	opts := Options{Categories: []findings.Category{findings.CategoryCurrency}}
	require.True(t, opts.CategoryEnabled(findings.CategoryCurrency))
	require.False(t, opts.CategoryEnabled(findings.CategoryTIN))
}

func TestJurisdictionEnabled(t *testing.T) {
	require.True(t, Options{}.JurisdictionEnabled("DE"))

	opts := Options{Jurisdictions: []string{"LU"}}
	require.True(t, opts.JurisdictionEnabled("LU"))
	require.False(t, opts.JurisdictionEnabled("DE"))
}
