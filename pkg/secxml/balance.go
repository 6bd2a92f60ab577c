package secxml

import (
	"fmt"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
)

// scanBalance walks the document once and verifies that element tags
// nest properly. The open-tag stack is an explicit slice, so depth costs
// one string per level and nothing recurses.
func scanBalance(s string) []findings.Result {
	var out []findings.Result
	var stack []string

	report := func(msg string) {
		if len(out) >= maxBalanceFindings {
			return
		}
		out = append(out, result(RuleTagBalance, findings.CategoryStructure, findings.SeverityCritical, msg))
	}

	i := 0
	n := len(s)
	for i < n {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		rest := s[i:]

		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest, "-->")
			if end < 0 {
				report(fmt.Sprintf("unterminated comment starting at byte offset %d", i))
				i = n
				continue
			}
			i += end + 3

		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(rest, "]]>")
			if end < 0 {
				report(fmt.Sprintf("unterminated CDATA section starting at byte offset %d", i))
				i = n
				continue
			}
			i += end + 3

		case strings.HasPrefix(rest, "<?"):
			end := strings.Index(rest, "?>")
			if end < 0 {
				report(fmt.Sprintf("unterminated processing instruction at byte offset %d", i))
				i = n
				continue
			}
			i += end + 2

		case strings.HasPrefix(rest, "<!"):
			// Declarations are flagged by the DTD scan; here we only
			// need to step over them.
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				i = n
				continue
			}
			i += end + 1

		case strings.HasPrefix(rest, "</"):
			name, adv, ok := readTag(rest[2:])
			if !ok {
				report(fmt.Sprintf("malformed closing tag at byte offset %d", i))
				i++
				continue
			}
			switch {
			case len(stack) == 0:
				report(fmt.Sprintf("closing tag </%s> without a matching open tag", name))
			case stack[len(stack)-1] != name:
				report(fmt.Sprintf("closing tag </%s> does not match open tag <%s>", name, stack[len(stack)-1]))
				stack = stack[:len(stack)-1]
			default:
				stack = stack[:len(stack)-1]
			}
			i += 2 + adv

		default:
			name, adv, ok := readTag(rest[1:])
			if !ok {
				report(fmt.Sprintf("malformed tag at byte offset %d", i))
				i++
				continue
			}
			// adv points one past '>'; '/>' self-closes.
			if !strings.HasSuffix(strings.TrimRight(rest[1:1+adv], ">"), "/") {
				stack = append(stack, name)
			}
			i += 1 + adv
		}
	}

	for j := len(stack) - 1; j >= 0; j-- {
		report(fmt.Sprintf("element <%s> is never closed", stack[j]))
	}
	return out
}

// readTag reads an element name and advances past the tag's closing '>',
// honoring quoted attribute values. It returns the name, the number of
// bytes consumed, and whether the tag was syntactically plausible.
func readTag(s string) (string, int, bool) {
	j := 0
	for j < len(s) && isNameByte(s[j], j == 0) {
		j++
	}
	if j == 0 {
		return "", 0, false
	}
	name := s[:j]

	var quote byte
	for ; j < len(s); j++ {
		c := s[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return name, j + 1, true
		case c == '<':
			// A new tag opened before this one closed.
			return name, j, false
		}
	}
	return name, j, false
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == ':':
		return true
	case !first && (c >= '0' && c <= '9' || c == '-' || c == '.'):
		return true
	}
	// Multi-byte UTF-8 name characters.
	return c >= 0x80
}
