package docgen

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Word splits text into runs wherever formatting, spell checking or
// revision marks change, so a placeholder typed as "{{ .case.number }}"
// can arrive as several <w:t> elements. joinPlaceholders removes the markup
// between the opening and closing braces so each action is contiguous text
// again, then prepares it for rendering.
func joinPlaceholders(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		c := src[i]
		if c == '<' {
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				out.WriteString(src[i:])
				break
			}
			out.WriteString(src[i : i+end+1])
			i += end + 1
			continue
		}
		if c == '{' {
			if j := nextText(src, i+1); j >= 0 && src[j] == '{' {
				action, next, ok := collectAction(src, j+1)
				if ok {
					out.WriteString(prepareAction(action))
					i = next
					continue
				}
			}
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

// nextText returns the index of the first character at or after i that is
// not part of a tag, or -1.
func nextText(src string, i int) int {
	for i < len(src) {
		if src[i] != '<' {
			return i
		}
		end := strings.IndexByte(src[i:], '>')
		if end < 0 {
			return -1
		}
		i += end + 1
	}
	return -1
}

// collectAction gathers the text of an action starting after "{{" at i,
// dropping any tags, up to and including the closing "}}". It reports the
// index just past the closing braces.
func collectAction(src string, i int) (string, int, bool) {
	var body strings.Builder
	for {
		j := nextText(src, i)
		if j < 0 {
			return "", 0, false
		}
		if src[j] == '}' {
			if k := nextText(src, j+1); k >= 0 && src[k] == '}' {
				return body.String(), k + 1, true
			}
		}
		body.WriteByte(src[j])
		i = j + 1
	}
}

var (
	smartQuotes = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
	controlWord = regexp.MustCompile(`^(if|else|end|range|with|define|template|block|break|continue)\b`)
	assignment  = regexp.MustCompile(`^\$\w*\s*:?=`)
)

// prepareAction rebuilds an action for text/template. Word stores quotes
// as entities or typographic quotes; both are turned back into plain
// quotes. Actions that print a value are piped through xml so the result
// stays well-formed.
func prepareAction(body string) string {
	body = smartQuotes.Replace(html.UnescapeString(body))

	trimLeft, trimRight := "", ""
	inner := body
	if strings.HasPrefix(inner, "-") {
		trimLeft, inner = "- ", strings.TrimPrefix(inner, "-")
	}
	if strings.HasSuffix(inner, "-") {
		trimRight, inner = " -", strings.TrimSuffix(inner, "-")
	}
	inner = strings.TrimSpace(inner)

	if inner == "" || strings.HasPrefix(inner, "/*") || controlWord.MatchString(inner) || assignment.MatchString(inner) {
		return "{{" + trimLeft + inner + trimRight + "}}"
	}
	return fmt.Sprintf("{{%s(%s) | xml%s}}", trimLeft, inner, trimRight)
}

const lineBreak = `</w:t><w:br/><w:t xml:space="preserve">`

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r\n", lineBreak,
	"\n", lineBreak,
)

// xmlText escapes a value for use inside <w:t>. Newlines become Word line
// breaks.
func xmlText(v any) string {
	return xmlEscaper.Replace(fmt.Sprint(v))
}
