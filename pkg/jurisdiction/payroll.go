package jurisdiction

// DefaultAveragePayroll is used for the substance-based carve-out when a
// jurisdiction has no entry in the reference table. EUR per employee per
// year.
const DefaultAveragePayroll = 50_000

// averagePayroll holds indicative average annual payroll per employee in
// EUR, used only for Safe Harbour screening, not for GloBE computation.
var averagePayroll = map[Code]float64{
	"AT": 58_000,
	"AU": 62_000,
	"BE": 60_000,
	"CA": 58_000,
	"CH": 85_000,
	"CN": 18_000,
	"CZ": 26_000,
	"DE": 58_000,
	"DK": 68_000,
	"ES": 38_000,
	"FI": 55_000,
	"FR": 52_000,
	"GB": 50_000,
	"HK": 45_000,
	"HU": 20_000,
	"IE": 55_000,
	"IN": 8_000,
	"IT": 42_000,
	"JP": 42_000,
	"KR": 40_000,
	"LU": 72_000,
	"MX": 14_000,
	"NL": 58_000,
	"NO": 70_000,
	"PL": 22_000,
	"PT": 28_000,
	"SE": 56_000,
	"SG": 52_000,
	"US": 70_000,
}

// AveragePayroll returns the reference average payroll for a
// jurisdiction, falling back to DefaultAveragePayroll for codes without
// an entry.
func AveragePayroll(code Code) float64 {
	if v, ok := averagePayroll[code]; ok {
		return v
	}
	return DefaultAveragePayroll
}
