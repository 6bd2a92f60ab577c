// Package transform converts well-formed CbC XML into the canonical
// document model. It is deliberately permissive about content: missing
// optional elements become zero values, unparseable numbers and dates
// keep their raw text for the validators to report on, and only a
// structural mismatch against the expected envelope yields an error.
//
// The security screen in pkg/secxml must run first; this package assumes
// DTD and entity constructs have already been rejected.
package transform

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/clearline-labs/cbcvalidate/pkg/cbc"
)

// RootElement is the only accepted document root.
const RootElement = "CBC_OECD"

// ParseError is returned when the document cannot be mapped onto the CbC
// envelope at all. It always represents a whole-document failure; partial
// documents are never returned alongside it.
type ParseError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.FileName, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse maps raw XML onto a ParsedCbcReport.
func Parse(raw string, fileName string) (*cbc.ParsedCbcReport, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	start, err := firstElement(dec)
	if err != nil {
		return nil, &ParseError{FileName: fileName, Reason: "no root element", Err: err}
	}
	if start.Name.Local != RootElement {
		return nil, &ParseError{
			FileName: fileName,
			Reason:   fmt.Sprintf("unexpected root element <%s>, want <%s>", start.Name.Local, RootElement),
		}
	}

	var env xmlEnvelope
	if err := dec.DecodeElement(&env, &start); err != nil {
		return nil, &ParseError{FileName: fileName, Reason: "malformed envelope", Err: err}
	}

	b := &builder{}
	report := &cbc.ParsedCbcReport{
		MessageSpec: b.messageSpec(env.MessageSpec),
		CbcBody:     b.body(env.CbcBody),
		FileName:    fileName,
		FileSize:    int64(len(raw)),
		ParsedAt:    time.Now().UTC(),
	}
	report.ParsingWarnings = b.warnings
	return report, nil
}

func firstElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return xml.StartElement{}, fmt.Errorf("document contains no elements")
			}
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// builder accumulates non-fatal warnings while mapping the envelope.
type builder struct {
	warnings []string
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *builder) messageSpec(x xmlMessageSpec) cbc.MessageSpec {
	return cbc.MessageSpec{
		SendingEntityIN:     text(x.SendingEntityIN),
		TransmittingCountry: text(x.TransmittingCountry),
		ReceivingCountry:    text(x.ReceivingCountry),
		MessageType:         text(x.MessageType),
		Language:            text(x.Language),
		Warning:             text(x.Warning),
		Contact:             text(x.Contact),
		MessageRefID:        text(x.MessageRefID),
		MessageTypeIndic:    cbc.MessageTypeIndic(text(x.MessageTypeIndic)),
		CorrMessageRefID:    text(x.CorrMessageRefID),
		ReportingPeriod:     b.date(x.ReportingPeriod, "ReportingPeriod"),
		Timestamp:           b.date(x.Timestamp, "Timestamp"),
	}
}

func (b *builder) body(x xmlBody) cbc.CbcBody {
	body := cbc.CbcBody{}
	if x.ReportingEntity != nil {
		body.ReportingEntity = &cbc.ReportingEntity{
			Entity:        b.entity(x.ReportingEntity.Entity),
			ReportingRole: text(x.ReportingEntity.ReportingRole),
			DocSpec:       docSpec(x.ReportingEntity.DocSpec),
		}
	}
	for _, rep := range x.Reports {
		body.Reports = append(body.Reports, b.report(rep))
	}
	for _, ai := range x.AdditionalInfo {
		body.AdditionalInfo = append(body.AdditionalInfo, cbc.AdditionalInfo{
			DocSpec:        docSpec(ai.DocSpec),
			OtherInfo:      text(ai.OtherInfo),
			ResCountryCode: texts(ai.ResCountryCode),
			SummaryRef:     texts(ai.SummaryRef),
		})
	}
	return body
}

func (b *builder) report(x xmlCbcReport) cbc.CbcReport {
	rep := cbc.CbcReport{
		DocSpec:        docSpec(x.DocSpec),
		ResCountryCode: text(x.ResCountryCode),
		Summary: cbc.Summary{
			UnrelatedRevenues: b.amount(x.Summary.Revenues.Unrelated, "Revenues/Unrelated"),
			RelatedRevenues:   b.amount(x.Summary.Revenues.Related, "Revenues/Related"),
			TotalRevenues:     b.amount(x.Summary.Revenues.Total, "Revenues/Total"),
			ProfitOrLoss:      b.amount(x.Summary.ProfitOrLoss, "ProfitOrLoss"),
			TaxPaid:           b.amount(x.Summary.TaxPaid, "TaxPaid"),
			TaxAccrued:        b.amount(x.Summary.TaxAccrued, "TaxAccrued"),
			Capital:           b.amount(x.Summary.Capital, "Capital"),
			Earnings:          b.amount(x.Summary.Earnings, "Earnings"),
			NbEmployees:       b.count(x.Summary.NbEmployees),
			TangibleAssets:    b.amount(x.Summary.Assets, "Assets"),
		},
	}
	for _, ce := range x.ConstEntities {
		rep.ConstEntities = append(rep.ConstEntities, b.entity(ce.ConstEntity))
	}
	return rep
}

func (b *builder) entity(x xmlEntity) cbc.ConstituentEntity {
	e := cbc.ConstituentEntity{
		TIN: cbc.TIN{
			Value:    text(x.TIN.Value),
			IssuedBy: text(x.TIN.IssuedBy),
		},
		Name:          text(firstNonEmpty(x.Names)),
		Address:       text(strings.Join(compact(x.Addresses), ", ")),
		CountryCode:   text(x.ResCountryCode),
		IncorpCountry: text(x.IncorpCountryCode),
		OtherInfo:     text(x.OtherEntityInfo),
	}
	for _, a := range x.BizActivities {
		if v := text(a); v != "" {
			e.BizActivities = append(e.BizActivities, cbc.BizActivity(v))
		}
	}
	return e
}

func docSpec(x xmlDocSpec) cbc.DocSpec {
	return cbc.DocSpec{
		DocTypeIndic:     cbc.DocTypeIndic(text(x.DocTypeIndic)),
		DocRefID:         text(x.DocRefID),
		CorrDocRefID:     text(x.CorrDocRefID),
		CorrMessageRefID: text(x.CorrMessageRefID),
	}
}

// amount parses one monetary element. Unparseable values keep the raw
// text with Valid=false so rule validators can still report on them.
func (b *builder) amount(x xmlAmount, where string) cbc.Amount {
	a := cbc.Amount{
		Raw:      strings.TrimSpace(x.Value),
		Currency: strings.TrimSpace(x.CurrCode),
	}
	if a.Raw == "" {
		return a
	}
	v, err := strconv.ParseFloat(a.Raw, 64)
	if err != nil {
		b.warnf("non-numeric amount %q in %s", a.Raw, where)
		return a
	}
	a.Value = v
	a.Valid = true
	return a
}

func (b *builder) count(raw string) cbc.Count {
	c := cbc.Count{Raw: strings.TrimSpace(raw)}
	if c.Raw == "" {
		return c
	}
	v, err := strconv.ParseInt(c.Raw, 10, 64)
	if err != nil {
		b.warnf("non-integer employee count %q", c.Raw)
		return c
	}
	c.Value = v
	c.Valid = true
	return c
}

// dateLayouts are tried in order; CbC schemas use plain dates for the
// reporting period and full timestamps for Timestamp.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func (b *builder) date(raw string, where string) cbc.DateField {
	d := cbc.DateField{Raw: strings.TrimSpace(raw)}
	if d.Raw == "" {
		return d
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, d.Raw); err == nil {
			d.Date = t
			return d
		}
	}
	b.warnf("unparseable date %q in %s", d.Raw, where)
	return d
}

// text trims and NFC-normalizes element content. encoding/xml has
// already resolved the predefined entity escapes.
func text(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func texts(ss []string) []string {
	var out []string
	for _, s := range ss {
		if v := text(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func compact(ss []string) []string {
	var out []string
	for _, s := range ss {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
