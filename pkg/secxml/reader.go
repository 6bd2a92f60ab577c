// Package secxml screens raw XML text for well-formedness and
// entity-based attack patterns before any structural parsing happens.
// Nothing here hands untrusted DTD or entity content to a real parser:
// the whole pass is a linear scan plus an explicit stack-based tag
// balancer, so it stays bounded for the largest accepted inputs and for
// deeply nested or very wide documents.
package secxml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
)

// Rule IDs produced by the reader.
const (
	RuleEmptyDocument  = "XML-001"
	RuleDoctype        = "XML-002"
	RuleEntity         = "XML-003"
	RuleParamEntity    = "XML-004"
	RuleExternalRef    = "XML-005"
	RuleInternalSubset = "XML-006"
	RuleNoDeclaration  = "XML-010"
	RuleEncoding       = "XML-011"
	RuleByteOrderMark  = "XML-012"
	RuleControlChar    = "XML-013"
	RuleTagBalance     = "XML-020"
)

// maxBalanceFindings caps how many tag-balance findings one document can
// produce; a truncated garbage file should not flood the report.
const maxBalanceFindings = 20

var (
	paramEntityRe = regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9._-]*;`)
	entityDefRe   = regexp.MustCompile(`(?i)<!ENTITY\s+%?\s*([A-Za-z_][A-Za-z0-9._-]*)\s+(?:SYSTEM|PUBLIC|"([^"]*)"|'([^']*)')`)
	entityRefRe   = regexp.MustCompile(`&([A-Za-z_][A-Za-z0-9._-]*);`)
	encodingRe    = regexp.MustCompile(`(?i)encoding\s*=\s*["']([^"']*)["']`)
)

// schemes that only ever appear in exfiltration payloads. http/https is
// legitimate in namespace URIs, so it is only flagged inside DTD markup.
var hostileSchemes = []string{"file://", "php://", "expect://", "netdoc://", "jar:file:", "gopher://"}

// Scan checks raw text and returns well-formedness and security
// findings. Callers must treat any critical finding as a hard stop: the
// document must not reach the transformer.
func Scan(raw string) []findings.Result {
	var out []findings.Result

	if strings.TrimSpace(stripBOM(raw)) == "" {
		out = append(out, result(RuleEmptyDocument, findings.CategoryStructure, findings.SeverityCritical,
			"document is empty or contains only whitespace"))
		return out
	}

	body, hadBOM := trimBOM(raw)
	if hadBOM {
		out = append(out, result(RuleByteOrderMark, findings.CategoryStructure, findings.SeverityWarning,
			"document starts with a byte-order mark; UTF-8 without BOM is expected"))
	}

	out = append(out, scanControlChars(body)...)
	out = append(out, scanDeclaration(body)...)
	out = append(out, scanDTD(body)...)

	// Balance checking is pointless once the document is already
	// rejected: DTD or control-character garbage would only produce
	// noise findings.
	if !findings.HasCritical(out) {
		out = append(out, scanBalance(body)...)
	}
	return out
}

func result(rule string, cat findings.Category, sev findings.Severity, msg string) findings.Result {
	return findings.Result{RuleID: rule, Category: cat, Severity: sev, Message: msg}
}

func stripBOM(s string) string {
	b, _ := trimBOM(s)
	return b
}

// trimBOM removes a leading UTF-8, UTF-16 or UTF-32 byte-order mark.
func trimBOM(s string) (string, bool) {
	switch {
	case strings.HasPrefix(s, "\xEF\xBB\xBF"):
		return s[3:], true
	case strings.HasPrefix(s, "\xFF\xFE\x00\x00"), strings.HasPrefix(s, "\x00\x00\xFE\xFF"):
		return s[4:], true
	case strings.HasPrefix(s, "\xFF\xFE"), strings.HasPrefix(s, "\xFE\xFF"):
		return s[2:], true
	}
	return s, false
}

// scanControlChars flags prohibited control characters. Tab, LF and CR
// are the only control characters XML 1.0 allows.
func scanControlChars(s string) []findings.Result {
	count := 0
	first := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			count++
			if first < 0 {
				first = i
			}
		}
	}
	if count == 0 {
		return nil
	}
	r := result(RuleControlChar, findings.CategorySecurity, findings.SeverityCritical,
		fmt.Sprintf("document contains %d prohibited control character(s), first at byte offset %d", count, first))
	r.Details = map[string]any{"count": count, "first_offset": first}
	return []findings.Result{r}
}

// scanDeclaration checks the XML declaration and its encoding attribute.
func scanDeclaration(s string) []findings.Result {
	var out []findings.Result

	trimmed := strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(trimmed, "<?xml") {
		out = append(out, result(RuleNoDeclaration, findings.CategoryStructure, findings.SeverityWarning,
			"missing XML declaration; an explicit <?xml version=\"1.0\" encoding=\"UTF-8\"?> prolog is expected"))
		// Without a prolog there is no encoding declaration either.
		out = append(out, result(RuleEncoding, findings.CategoryStructure, findings.SeverityError,
			"XML declaration does not declare an encoding; UTF-8 is required"))
		return out
	}

	end := strings.Index(trimmed, "?>")
	if end < 0 {
		end = len(trimmed)
	}
	decl := trimmed[:end]

	m := encodingRe.FindStringSubmatch(decl)
	switch {
	case m == nil:
		out = append(out, result(RuleEncoding, findings.CategoryStructure, findings.SeverityError,
			"XML declaration does not declare an encoding; UTF-8 is required"))
	case !strings.EqualFold(m[1], "utf-8"):
		r := result(RuleEncoding, findings.CategoryStructure, findings.SeverityError,
			fmt.Sprintf("declared encoding %q is not UTF-8", m[1]))
		r.Details = map[string]any{"declared_encoding": m[1]}
		out = append(out, r)
	}
	return out
}

// scanDTD flags every DTD construct. CbC exchanges never use DTDs, so
// any occurrence is treated as an attack attempt (XXE, billion laughs)
// rather than a style problem.
func scanDTD(s string) []findings.Result {
	var out []findings.Result
	upper := strings.ToUpper(s)

	dtdStart := strings.Index(upper, "<!DOCTYPE")
	if dtdStart >= 0 {
		out = append(out, result(RuleDoctype, findings.CategorySecurity, findings.SeverityCritical,
			"DOCTYPE declaration found; DTDs are not permitted in CbC submissions"))
	}

	if n := strings.Count(upper, "<!ENTITY"); n > 0 {
		r := result(RuleEntity, findings.CategorySecurity, findings.SeverityCritical,
			fmt.Sprintf("%d ENTITY declaration(s) found; entity definitions are not permitted", n))
		r.Details = map[string]any{"count": n}
		if chained, name := entityChain(s); chained {
			r.Message = fmt.Sprintf("%d ENTITY declaration(s) found with nested entity references (entity expansion attack pattern)", n)
			r.Details["expansion_chain"] = true
			r.Details["entity"] = name
		}
		out = append(out, r)
	}

	if region := dtdRegion(s, dtdStart); region != "" {
		if loc := paramEntityRe.FindString(region); loc != "" {
			r := result(RuleParamEntity, findings.CategorySecurity, findings.SeverityCritical,
				fmt.Sprintf("parameter entity reference %s found in DTD", loc))
			r.Details = map[string]any{"reference": loc}
			out = append(out, r)
		}
		regionUpper := strings.ToUpper(region)
		if strings.Contains(regionUpper, "SYSTEM") || strings.Contains(regionUpper, "PUBLIC") ||
			strings.Contains(regionUpper, "HTTP://") || strings.Contains(regionUpper, "HTTPS://") {
			out = append(out, result(RuleExternalRef, findings.CategorySecurity, findings.SeverityCritical,
				"external identifier (SYSTEM/PUBLIC or URL) found in DTD; external entity resolution is not permitted"))
		}
		if strings.Contains(regionUpper, "<!ELEMENT") || strings.Contains(regionUpper, "<!ATTLIST") {
			out = append(out, result(RuleInternalSubset, findings.CategorySecurity, findings.SeverityCritical,
				"internal DTD subset markup (<!ELEMENT or <!ATTLIST) found"))
		}
	}

	lower := strings.ToLower(s)
	for _, scheme := range hostileSchemes {
		if idx := strings.Index(lower, scheme); idx >= 0 {
			r := result(RuleExternalRef, findings.CategorySecurity, findings.SeverityCritical,
				fmt.Sprintf("hostile URI scheme %q found at byte offset %d", scheme, idx))
			r.Details = map[string]any{"scheme": scheme, "offset": idx}
			out = append(out, r)
			break
		}
	}
	return out
}

// dtdRegion extracts the declaration region so SYSTEM/PUBLIC and
// parameter-entity checks do not fire on legitimate document content.
// Without a DOCTYPE the region still covers stray <!ENTITY blocks.
func dtdRegion(s string, dtdStart int) string {
	start := dtdStart
	if start < 0 {
		upper := strings.ToUpper(s)
		start = strings.Index(upper, "<!ENTITY")
		if start < 0 {
			return ""
		}
	}
	rest := s[start:]
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth <= 0 {
				return rest[:i+1]
			}
		}
	}
	return rest
}

// entityChain reports whether any declared entity's replacement text
// references another declared entity, the shape of a billion-laughs
// expansion.
func entityChain(s string) (bool, string) {
	defs := entityDefRe.FindAllStringSubmatch(s, -1)
	if len(defs) == 0 {
		return false, ""
	}
	names := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		names[d[1]] = struct{}{}
	}
	for _, d := range defs {
		value := d[2]
		if value == "" {
			value = d[3]
		}
		for _, ref := range entityRefRe.FindAllStringSubmatch(value, -1) {
			if _, ok := names[ref[1]]; ok {
				return true, d[1]
			}
		}
	}
	return false, ""
}
