package validation

import (
	"fmt"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
)

// Context wraps one parsed report plus run options. It is read-only from
// the validators' perspective: the per-jurisdiction aggregates are built
// once at construction and never mutated afterwards, so validators may
// run concurrently over the same Context.
type Context struct {
	Report  *cbc.ParsedCbcReport
	Options Options

	jurisdictions []JurisdictionReference
}

// JurisdictionReference is the precomputed aggregate for one CbcReports
// entry. Entries keep document order; duplicate country codes stay as
// separate entries.
type JurisdictionReference struct {
	// Index is the zero-based position in CbcBody.Reports.
	Index       int
	CountryCode string
	DocRefID    string

	Summary cbc.Summary

	// Currencies lists the distinct currency codes seen across the
	// row's monetary fields, in field order.
	Currencies []string

	EntityCount int

	// FiscalYear comes from the message-level reporting period; 0 when
	// the period did not parse.
	FiscalYear int
}

// XPath locates the jurisdiction's CbcReports element (1-based, per
// XPath convention).
func (j JurisdictionReference) XPath() string {
	return fmt.Sprintf("/CBC_OECD/CbcBody/CbcReports[%d]", j.Index+1)
}

// NewContext builds a context and its jurisdiction aggregates.
func NewContext(report *cbc.ParsedCbcReport, opts Options) *Context {
	ctx := &Context{Report: report, Options: opts}
	year := report.MessageSpec.ReportingPeriod.FiscalYear()

	for i := range report.CbcBody.Reports {
		rep := &report.CbcBody.Reports[i]
		ref := JurisdictionReference{
			Index:       i,
			CountryCode: rep.ResCountryCode,
			DocRefID:    rep.DocSpec.DocRefID,
			Summary:     rep.Summary,
			EntityCount: len(rep.ConstEntities),
			FiscalYear:  year,
		}
		for _, a := range rep.Summary.Amounts() {
			if a.Currency == "" {
				continue
			}
			if !contains(ref.Currencies, a.Currency) {
				ref.Currencies = append(ref.Currencies, a.Currency)
			}
		}
		ctx.jurisdictions = append(ctx.jurisdictions, ref)
	}
	return ctx
}

// Jurisdictions returns the aggregates for every jurisdiction passing
// the options' jurisdiction filter, in document order.
func (c *Context) Jurisdictions() []JurisdictionReference {
	if len(c.Options.Jurisdictions) == 0 {
		return c.jurisdictions
	}
	var out []JurisdictionReference
	for _, j := range c.jurisdictions {
		if c.Options.JurisdictionEnabled(j.CountryCode) {
			out = append(out, j)
		}
	}
	return out
}

// AllJurisdictions returns the aggregates ignoring the filter. Document
//-wide rules (duplicate docRefIds, cross-report currency checks) use
// this so a filter cannot mask structural defects.
func (c *Context) AllJurisdictions() []JurisdictionReference {
	return c.jurisdictions
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
