// Package cbc defines the canonical in-memory model for an OECD
// Country-by-Country report. The transformer populates it from XML; the
// validation pipeline reads it. A ParsedCbcReport is owned by the pipeline
// run that parsed it and is never mutated after construction.
package cbc

import "time"

// ParsedCbcReport is the canonical document model for one submitted file.
type ParsedCbcReport struct {
	MessageSpec MessageSpec `json:"message_spec"`
	CbcBody     CbcBody     `json:"cbc_body"`

	// Provenance.
	FileName        string    `json:"file_name"`
	FileSize        int64     `json:"file_size"`
	ParsedAt        time.Time `json:"parsed_at"`
	ParsingWarnings []string  `json:"parsing_warnings,omitempty"`
}

// MessageSpec is the envelope metadata for one CbC submission.
type MessageSpec struct {
	SendingEntityIN     string           `json:"sending_entity_in,omitempty"`
	TransmittingCountry string           `json:"transmitting_country"`
	ReceivingCountry    string           `json:"receiving_country"`
	MessageType         string           `json:"message_type"`
	Language            string           `json:"language,omitempty"`
	Warning             string           `json:"warning,omitempty"`
	Contact             string           `json:"contact,omitempty"`
	MessageRefID        string           `json:"message_ref_id"`
	MessageTypeIndic    MessageTypeIndic `json:"message_type_indic"`
	CorrMessageRefID    string           `json:"corr_message_ref_id,omitempty"`

	// ReportingPeriod is the fiscal year-end date. Raw is always the
	// original text; Date is zero when the text did not parse.
	ReportingPeriod DateField `json:"reporting_period"`
	Timestamp       DateField `json:"timestamp"`
}

// CbcBody holds the reporting entity, the per-jurisdiction reports in
// document order, and any additional info records.
type CbcBody struct {
	ReportingEntity *ReportingEntity `json:"reporting_entity,omitempty"`
	Reports         []CbcReport      `json:"reports"`
	AdditionalInfo  []AdditionalInfo `json:"additional_info,omitempty"`
}

// DocSpec is the per-record metadata block linking records across
// submissions. DocRefID must be unique across the whole document.
type DocSpec struct {
	DocTypeIndic     DocTypeIndic `json:"doc_type_indic"`
	DocRefID         string       `json:"doc_ref_id"`
	CorrDocRefID     string       `json:"corr_doc_ref_id,omitempty"`
	CorrMessageRefID string       `json:"corr_message_ref_id,omitempty"`
}

// ReportingEntity identifies the group entity filing the report.
type ReportingEntity struct {
	Entity        ConstituentEntity `json:"entity"`
	ReportingRole string            `json:"reporting_role,omitempty"`
	DocSpec       DocSpec           `json:"doc_spec"`
}

// CbcReport is the data for one tax jurisdiction.
type CbcReport struct {
	DocSpec        DocSpec             `json:"doc_spec"`
	ResCountryCode string              `json:"res_country_code"`
	Summary        Summary             `json:"summary"`
	ConstEntities  []ConstituentEntity `json:"const_entities"`
}

// Summary carries the aggregate financials for one jurisdiction. All
// monetary fields carry a currency code.
type Summary struct {
	UnrelatedRevenues Amount `json:"unrelated_revenues"`
	RelatedRevenues   Amount `json:"related_revenues"`
	TotalRevenues     Amount `json:"total_revenues"`
	ProfitOrLoss      Amount `json:"profit_or_loss"`
	TaxPaid           Amount `json:"tax_paid"`
	TaxAccrued        Amount `json:"tax_accrued"`
	Capital           Amount `json:"capital"`
	Earnings          Amount `json:"earnings"`
	NbEmployees       Count  `json:"nb_employees"`
	TangibleAssets    Amount `json:"tangible_assets"`
}

// Amounts returns the monetary fields in schema order. Used by rules that
// sweep every amount in a row (currency consistency, sign conventions).
func (s *Summary) Amounts() []Amount {
	return []Amount{
		s.UnrelatedRevenues, s.RelatedRevenues, s.TotalRevenues,
		s.ProfitOrLoss, s.TaxPaid, s.TaxAccrued,
		s.Capital, s.Earnings, s.TangibleAssets,
	}
}

// ConstituentEntity is one group member resident in (or attributed to) a
// jurisdiction.
type ConstituentEntity struct {
	TIN           TIN           `json:"tin"`
	Name          string        `json:"name"`
	Address       string        `json:"address,omitempty"`
	CountryCode   string        `json:"country_code,omitempty"`
	IncorpCountry string        `json:"incorp_country,omitempty"`
	BizActivities []BizActivity `json:"biz_activities,omitempty"`
	OtherInfo     string        `json:"other_info,omitempty"`
}

// TIN is a tax identification number with its issuing jurisdiction.
type TIN struct {
	Value    string `json:"value"`
	IssuedBy string `json:"issued_by,omitempty"`
}

// AdditionalInfo is a free-text record attached to the report.
type AdditionalInfo struct {
	DocSpec        DocSpec  `json:"doc_spec"`
	OtherInfo      string   `json:"other_info,omitempty"`
	ResCountryCode []string `json:"res_country_code,omitempty"`
	SummaryRef     []string `json:"summary_ref,omitempty"`
}

// Amount is a monetary value. Raw is the original XML text; Value is the
// parsed figure and is only meaningful when Valid is true. Rules that
// depend on the numeric value skip rows where Valid is false; rules about
// the text itself still see Raw.
type Amount struct {
	Raw      string  `json:"raw,omitempty"`
	Value    float64 `json:"value"`
	Valid    bool    `json:"valid"`
	Currency string  `json:"curr_code,omitempty"`
}

// IsZero reports whether the amount parsed and is exactly zero.
func (a Amount) IsZero() bool { return a.Valid && a.Value == 0 }

// Negative reports whether the amount parsed and is below zero.
func (a Amount) Negative() bool { return a.Valid && a.Value < 0 }

// Positive reports whether the amount parsed and is above zero.
func (a Amount) Positive() bool { return a.Valid && a.Value > 0 }

// Count is a non-monetary integer field (employee headcount).
type Count struct {
	Raw   string `json:"raw,omitempty"`
	Value int64  `json:"value"`
	Valid bool   `json:"valid"`
}

// DateField is a permissively parsed date. Raw is always retained; Date
// is zero when parsing failed.
type DateField struct {
	Raw  string    `json:"raw,omitempty"`
	Date time.Time `json:"date,omitzero"`
}

// Parsed reports whether the raw text decoded to a real date.
func (d DateField) Parsed() bool { return !d.Date.IsZero() }

// FiscalYear returns the year of the reporting period end date, or 0 when
// the date did not parse.
func (d DateField) FiscalYear() int {
	if !d.Parsed() {
		return 0
	}
	return d.Date.Year()
}

// DocSpecs returns every DocSpec in the document in schema order:
// reporting entity first, then each jurisdiction report, then additional
// info. The uniqueness rule runs over exactly this sequence.
func (r *ParsedCbcReport) DocSpecs() []DocSpec {
	var specs []DocSpec
	if r.CbcBody.ReportingEntity != nil {
		specs = append(specs, r.CbcBody.ReportingEntity.DocSpec)
	}
	for _, rep := range r.CbcBody.Reports {
		specs = append(specs, rep.DocSpec)
	}
	for _, ai := range r.CbcBody.AdditionalInfo {
		specs = append(specs, ai.DocSpec)
	}
	return specs
}
