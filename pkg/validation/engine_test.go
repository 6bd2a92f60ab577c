package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
	"github.com/clearline-labs/cbcvalidate/pkg/validation/rules"
)

const cleanDoc = `<?xml version="1.0" encoding="UTF-8"?>
<CBC_OECD version="2.0">
  <MessageSpec>
    <TransmittingCountry>LU</TransmittingCountry>
    <ReceivingCountry>DE</ReceivingCountry>
    <MessageType>CBC</MessageType>
    <MessageRefId>LU2024CBC000001</MessageRefId>
    <MessageTypeIndic>CBC701</MessageTypeIndic>
    <ReportingPeriod>2024-12-31</ReportingPeriod>
    <Timestamp>2025-03-01T10:15:00</Timestamp>
  </MessageSpec>
  <CbcBody>
    <ReportingEntity>
      <Entity>
        <TIN issuedBy="LU">12345678901</TIN>
        <Name>Group Holdings S.A.</Name>
      </Entity>
      <ReportingRole>CBC801</ReportingRole>
      <DocSpec>
        <DocTypeIndic>OECD1</DocTypeIndic>
        <DocRefId>LU2024REENTITY</DocRefId>
      </DocSpec>
    </ReportingEntity>
    <CbcReports>
      <DocSpec>
        <DocTypeIndic>OECD1</DocTypeIndic>
        <DocRefId>DE2024CBCR001</DocRefId>
      </DocSpec>
      <ResCountryCode>DE</ResCountryCode>
      <Summary>
        <Revenues>
          <Unrelated currCode="EUR">30000000</Unrelated>
          <Related currCode="EUR">20000000</Related>
          <Total currCode="EUR">50000000</Total>
        </Revenues>
        <ProfitOrLoss currCode="EUR">5000000</ProfitOrLoss>
        <TaxPaid currCode="EUR">1000000</TaxPaid>
        <TaxAccrued currCode="EUR">1000000</TaxAccrued>
        <Capital currCode="EUR">10000000</Capital>
        <Earnings currCode="EUR">8000000</Earnings>
        <NbEmployees>250</NbEmployees>
        <Assets currCode="EUR">20000000</Assets>
      </Summary>
      <ConstEntities>
        <ConstEntity>
          <TIN issuedBy="DE">302345678</TIN>
          <Name>Operating GmbH</Name>
          <ResCountryCode>DE</ResCountryCode>
          <BizActivities>CBC505</BizActivities>
        </ConstEntity>
      </ConstEntities>
    </CbcReports>
  </CbcBody>
</CBC_OECD>`

const duplicateRefDoc = `<?xml version="1.0" encoding="UTF-8"?>
<CBC_OECD>
  <MessageSpec>
    <MessageRefId>LU2024CBC000002</MessageRefId>
    <MessageTypeIndic>CBC701</MessageTypeIndic>
    <ReportingPeriod>2024-12-31</ReportingPeriod>
  </MessageSpec>
  <CbcBody>
    <CbcReports>
      <DocSpec><DocTypeIndic>OECD1</DocTypeIndic><DocRefId>DE2024SAME</DocRefId></DocSpec>
      <ResCountryCode>DE</ResCountryCode>
      <Summary><Revenues><Total currCode="EUR">1000</Total></Revenues></Summary>
      <ConstEntities><ConstEntity><Name>First GmbH</Name></ConstEntity></ConstEntities>
    </CbcReports>
    <CbcReports>
      <DocSpec><DocTypeIndic>OECD1</DocTypeIndic><DocRefId>DE2024SAME</DocRefId></DocSpec>
      <ResCountryCode>DE</ResCountryCode>
      <Summary><Revenues><Total currCode="EUR">1000</Total></Revenues></Summary>
      <ConstEntities><ConstEntity><Name>Second GmbH</Name></ConstEntity></ConstEntities>
    </CbcReports>
  </CbcBody>
</CBC_OECD>`

func newTestEngine(opts ...validation.EngineOption) *validation.Engine {
	return validation.NewEngine(rules.Default(), opts...)
}

func countRule(report *findings.ValidationReport, ruleID string) int {
	n := 0
	for _, r := range report.Results {
		if r.RuleID == ruleID {
			n++
		}
	}
	return n
}

func TestValidateCleanDocument(t *testing.T) {
	report := newTestEngine().Validate(cleanDoc, "clean.xml", validation.DefaultOptions())

	require.True(t, report.IsValid)
	require.Zero(t, report.Summary.Critical)
	require.Zero(t, report.Summary.Errors)
	// Safe harbour screening still reports its outcome as info.
	require.Equal(t, 1, countRule(report, rules.RuleSafeHarbourPass))
	require.Equal(t, 1, countRule(report, rules.RuleSafeHarbourSummary))
}

func TestValidateEmptyInput(t *testing.T) {
	report := newTestEngine().Validate("", "empty.xml", validation.DefaultOptions())

	require.False(t, report.IsValid)
	require.Len(t, report.Results, 1)
	require.Equal(t, 1, report.Summary.Critical)
}

func TestValidateRejectsXXEBeforeParsing(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?><!DOCTYPE x [<!ENTITY e SYSTEM "file:///x">]><CBC_OECD>&e;</CBC_OECD>`
	report := newTestEngine().Validate(doc, "xxe.xml", validation.DefaultOptions())

	require.False(t, report.IsValid)
	require.Positive(t, report.Summary.Critical)
	// The pipeline stops at the screen; no rule validators run.
	require.Zero(t, countRule(report, validation.RuleParseFailure))
	require.Zero(t, countRule(report, rules.RuleSafeHarbourSummary))
}

func TestValidateParseFailure(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?><NotCbc></NotCbc>`
	report := newTestEngine().Validate(doc, "notcbc.xml", validation.DefaultOptions())

	require.False(t, report.IsValid)
	require.Equal(t, 1, countRule(report, validation.RuleParseFailure))
}

func TestValidateNeverPanicsOnAdversarialInput(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x02",
		"<",
		"<?xml version=\"1.0\"?>",
		"<CBC_OECD>",
		"<a><b></a></b>",
		"\xEF\xBB\xBF<CBC_OECD></CBC_OECD>",
	}
	engine := newTestEngine()
	for _, raw := range inputs {
		require.NotPanics(t, func() {
			report := engine.Validate(raw, "adversarial.xml", validation.DefaultOptions())
			require.NotNil(t, report)
		}, "%q", raw)
	}
}

func TestValidateDeterministicWithInjectedClockAndID(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(
		validation.WithClock(func() time.Time { return fixed }),
		validation.WithIDGenerator(func() string { return "report-0001" }),
	)

	first := engine.Validate(cleanDoc, "clean.xml", validation.DefaultOptions())
	second := engine.Validate(cleanDoc, "clean.xml", validation.DefaultOptions())

	require.Equal(t, "report-0001", first.ReportID)
	require.Equal(t, fixed, first.StartedAt)
	require.Zero(t, first.Duration)
	require.Equal(t, first.ContentHash, second.ContentHash)
	require.Regexp(t, "^sha256:[0-9a-f]{64}$", first.ContentHash)
}

func TestValidateMinSeverityFilter(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.MinSeverity = findings.SeverityError

	report := newTestEngine().Validate(cleanDoc, "clean.xml", opts)

	for _, r := range report.Results {
		require.True(t, r.Severity.AtLeast(findings.SeverityError), r.RuleID)
	}
	require.Zero(t, report.Summary.Info)
}

func TestValidateMaxIssuesTruncation(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.MaxIssues = 1

	report := newTestEngine().Validate(duplicateRefDoc, "dup.xml", opts)

	require.Len(t, report.Results, 1)
	require.True(t, report.Truncated)
	// Summary counting happens before truncation.
	require.Greater(t, report.Summary.Total, 1)
}

func TestValidateFailFastStopsAfterCritical(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.FailFast = true

	report := newTestEngine().Validate(duplicateRefDoc, "dup.xml", opts)

	require.False(t, report.IsValid)
	require.Equal(t, 1, countRule(report, rules.RuleDocRefDuplicate))
	// The doc-spec validator produced the critical; safe harbour never ran.
	require.Zero(t, countRule(report, rules.RuleSafeHarbourSummary))
}

func TestValidateSkipRules(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.SkipRules = []string{"P2"}

	report := newTestEngine().Validate(cleanDoc, "clean.xml", opts)
	require.Zero(t, countRule(report, rules.RuleSafeHarbourPass))
	require.Zero(t, countRule(report, rules.RuleSafeHarbourSummary))
}

func TestValidatePillar2Disabled(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.EnablePillar2 = false

	report := newTestEngine().Validate(cleanDoc, "clean.xml", opts)
	require.Zero(t, report.ByCategory[findings.CategorySafeHarbour])
}

func TestValidateIncludePassed(t *testing.T) {
	opts := validation.DefaultOptions()
	opts.IncludePassed = true

	report := newTestEngine().Validate(cleanDoc, "clean.xml", opts)

	require.True(t, report.IsValid)
	require.Positive(t, report.Summary.Passed)
	passedResults := 0
	for _, r := range report.Results {
		if r.Message == "all checks passed" {
			passedResults++
		}
	}
	require.Equal(t, report.Summary.Passed, passedResults)
}
