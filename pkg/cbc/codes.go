package cbc

// MessageTypeIndic identifies whether a message carries new data or
// corrections to a previously transmitted message.
type MessageTypeIndic string

const (
	// MessageTypeNewData is a first-time submission of CbC information.
	MessageTypeNewData MessageTypeIndic = "CBC701"
	// MessageTypeCorrection corrects or deletes previously sent records.
	MessageTypeCorrection MessageTypeIndic = "CBC702"
)

// Known reports whether the indicator is one of the defined codes.
func (m MessageTypeIndic) Known() bool {
	return m == MessageTypeNewData || m == MessageTypeCorrection
}

// DocTypeIndic identifies the lifecycle state of a single record.
// OECD0-OECD3 are live submissions; OECD10-OECD13 are their test-data
// counterparts and must never appear in production exchanges.
type DocTypeIndic string

const (
	DocTypeResend    DocTypeIndic = "OECD0"
	DocTypeNew       DocTypeIndic = "OECD1"
	DocTypeCorrected DocTypeIndic = "OECD2"
	DocTypeDeleted   DocTypeIndic = "OECD3"

	DocTypeTestResend    DocTypeIndic = "OECD10"
	DocTypeTestNew       DocTypeIndic = "OECD11"
	DocTypeTestCorrected DocTypeIndic = "OECD12"
	DocTypeTestDeleted   DocTypeIndic = "OECD13"
)

// Known reports whether the indicator is one of the defined codes.
func (d DocTypeIndic) Known() bool {
	switch d {
	case DocTypeResend, DocTypeNew, DocTypeCorrected, DocTypeDeleted,
		DocTypeTestResend, DocTypeTestNew, DocTypeTestCorrected, DocTypeTestDeleted:
		return true
	}
	return false
}

// IsTestData reports whether the indicator is a test-data code (OECD1x).
func (d DocTypeIndic) IsTestData() bool {
	switch d {
	case DocTypeTestResend, DocTypeTestNew, DocTypeTestCorrected, DocTypeTestDeleted:
		return true
	}
	return false
}

// Live maps a test-data indicator to its live counterpart. Live codes map
// to themselves, so consistency rules only ever compare live codes.
func (d DocTypeIndic) Live() DocTypeIndic {
	switch d {
	case DocTypeTestResend:
		return DocTypeResend
	case DocTypeTestNew:
		return DocTypeNew
	case DocTypeTestCorrected:
		return DocTypeCorrected
	case DocTypeTestDeleted:
		return DocTypeDeleted
	}
	return d
}

// IsNewData reports whether the record carries first-time data.
func (d DocTypeIndic) IsNewData() bool {
	return d.Live() == DocTypeNew
}

// IsCorrection reports whether the record corrects a prior record.
func (d DocTypeIndic) IsCorrection() bool {
	return d.Live() == DocTypeCorrected
}

// IsDeletion reports whether the record deletes a prior record.
func (d DocTypeIndic) IsDeletion() bool {
	return d.Live() == DocTypeDeleted
}

// IsResend reports whether the record resends an unchanged prior record.
func (d DocTypeIndic) IsResend() bool {
	return d.Live() == DocTypeResend
}

// BizActivity is an OECD business activity code (CBC501-CBC513) declared
// for a constituent entity.
type BizActivity string

const (
	ActivityRnD            BizActivity = "CBC501" // research and development
	ActivityIPHolding      BizActivity = "CBC502" // holding or managing IP
	ActivityPurchasing     BizActivity = "CBC503" // purchasing or procurement
	ActivityManufacturing  BizActivity = "CBC504" // manufacturing or production
	ActivitySales          BizActivity = "CBC505" // sales, marketing or distribution
	ActivityAdmin          BizActivity = "CBC506" // administrative or support services
	ActivityExternalSvc    BizActivity = "CBC507" // services to unrelated parties
	ActivityGroupFinance   BizActivity = "CBC508" // internal group finance
	ActivityRegulatedFin   BizActivity = "CBC509" // regulated financial services
	ActivityInsurance      BizActivity = "CBC510" // insurance
	ActivityShareholding   BizActivity = "CBC511" // holding shares or equity instruments
	ActivityDormant        BizActivity = "CBC512" // dormant
	ActivityOther          BizActivity = "CBC513" // other
)

// AssetIntensive reports whether the activity normally requires a
// material tangible asset base.
func (a BizActivity) AssetIntensive() bool {
	switch a {
	case ActivityManufacturing, ActivitySales, ActivityPurchasing:
		return true
	}
	return false
}

// IsHolding reports whether the activity is a pure holding function.
func (a BizActivity) IsHolding() bool {
	return a == ActivityIPHolding || a == ActivityShareholding
}
