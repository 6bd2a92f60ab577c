package transform

// Wire structs for the OECD CbC XML envelope. Field names follow the
// schema element names; everything decodes as text and is converted by
// the builder so that malformed content never aborts the decode.

type xmlEnvelope struct {
	Version     string         `xml:"version,attr"`
	MessageSpec xmlMessageSpec `xml:"MessageSpec"`
	CbcBody     xmlBody        `xml:"CbcBody"`
}

type xmlMessageSpec struct {
	SendingEntityIN     string `xml:"SendingEntityIN"`
	TransmittingCountry string `xml:"TransmittingCountry"`
	ReceivingCountry    string `xml:"ReceivingCountry"`
	MessageType         string `xml:"MessageType"`
	Language            string `xml:"Language"`
	Warning             string `xml:"Warning"`
	Contact             string `xml:"Contact"`
	MessageRefID        string `xml:"MessageRefId"`
	MessageTypeIndic    string `xml:"MessageTypeIndic"`
	CorrMessageRefID    string `xml:"CorrMessageRefId"`
	ReportingPeriod     string `xml:"ReportingPeriod"`
	Timestamp           string `xml:"Timestamp"`
}

type xmlBody struct {
	ReportingEntity *xmlReportingEntity `xml:"ReportingEntity"`
	Reports         []xmlCbcReport      `xml:"CbcReports"`
	AdditionalInfo  []xmlAdditionalInfo `xml:"AdditionalInfo"`
}

type xmlReportingEntity struct {
	Entity        xmlEntity  `xml:"Entity"`
	ReportingRole string     `xml:"ReportingRole"`
	DocSpec       xmlDocSpec `xml:"DocSpec"`
}

type xmlDocSpec struct {
	DocTypeIndic     string `xml:"DocTypeIndic"`
	DocRefID         string `xml:"DocRefId"`
	CorrDocRefID     string `xml:"CorrDocRefId"`
	CorrMessageRefID string `xml:"CorrMessageRefId"`
}

type xmlCbcReport struct {
	DocSpec        xmlDocSpec       `xml:"DocSpec"`
	ResCountryCode string           `xml:"ResCountryCode"`
	Summary        xmlSummary       `xml:"Summary"`
	ConstEntities  []xmlConstEntity `xml:"ConstEntities"`
}

type xmlSummary struct {
	Revenues     xmlRevenues `xml:"Revenues"`
	ProfitOrLoss xmlAmount   `xml:"ProfitOrLoss"`
	TaxPaid      xmlAmount   `xml:"TaxPaid"`
	TaxAccrued   xmlAmount   `xml:"TaxAccrued"`
	Capital      xmlAmount   `xml:"Capital"`
	Earnings     xmlAmount   `xml:"Earnings"`
	NbEmployees  string      `xml:"NbEmployees"`
	Assets       xmlAmount   `xml:"Assets"`
}

type xmlRevenues struct {
	Unrelated xmlAmount `xml:"Unrelated"`
	Related   xmlAmount `xml:"Related"`
	Total     xmlAmount `xml:"Total"`
}

type xmlAmount struct {
	Value    string `xml:",chardata"`
	CurrCode string `xml:"currCode,attr"`
}

type xmlConstEntity struct {
	ConstEntity xmlEntity `xml:"ConstEntity"`
}

type xmlEntity struct {
	TIN               xmlTIN   `xml:"TIN"`
	Names             []string `xml:"Name"`
	Addresses         []string `xml:"Address"`
	ResCountryCode    string   `xml:"ResCountryCode"`
	IncorpCountryCode string   `xml:"IncorpCountryCode"`
	BizActivities     []string `xml:"BizActivities"`
	OtherEntityInfo   string   `xml:"OtherEntityInfo"`
}

type xmlTIN struct {
	Value    string `xml:",chardata"`
	IssuedBy string `xml:"issuedBy,attr"`
}

type xmlAdditionalInfo struct {
	DocSpec        xmlDocSpec `xml:"DocSpec"`
	OtherInfo      string     `xml:"OtherInfo"`
	ResCountryCode []string   `xml:"ResCountryCode"`
	SummaryRef     []string   `xml:"SummaryRef"`
}
