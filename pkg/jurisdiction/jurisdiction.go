// Package jurisdiction provides the country-code registry and the
// per-jurisdiction reference tables used by the validation rules.
package jurisdiction

import "strings"

// Code is an ISO 3166-1 alpha-2 country code, plus the OECD "X5"
// stateless-entity extension used in CbC filings.
type Code string

// Codes with dedicated rule sets.
const (
	Luxembourg Code = "LU"
	Germany    Code = "DE"
	France     Code = "FR"
	Stateless  Code = "X5"
)

// iso3166 is the ISO 3166-1 alpha-2 assignment set, plus X5 (stateless)
// and XK (Kosovo, used in practice by several exchange partners).
var iso3166 = map[Code]struct{}{}

func init() {
	const codes = "AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ " +
		"BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ " +
		"CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ " +
		"DE DJ DK DM DO DZ EC EE EG EH ER ES ET FI FJ FK FM FO FR " +
		"GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY " +
		"HK HM HN HR HT HU ID IE IL IM IN IO IQ IR IS IT JE JM JO JP " +
		"KE KG KH KI KM KN KP KR KW KY KZ LA LB LC LI LK LR LS LT LU LV LY " +
		"MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ " +
		"NA NC NE NF NG NI NL NO NP NR NU NZ OM PA PE PF PG PH PK PL PM PN PR PS PT PW PY " +
		"QA RE RO RS RU RW SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ " +
		"TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ UA UG UM US UY UZ " +
		"VA VC VE VG VI VN VU WF WS YE YT ZA ZM ZW XK X5"
	for _, c := range strings.Fields(codes) {
		iso3166[Code(c)] = struct{}{}
	}
}

// Valid reports whether code is a recognized two-letter country code.
// The check is case sensitive: CbC schemas require uppercase codes.
func Valid(code string) bool {
	_, ok := iso3166[Code(code)]
	return ok
}

// Normalize uppercases and trims a candidate code. It does not validate.
func Normalize(code string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(code)))
}
