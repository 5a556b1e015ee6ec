// Package rendering turns profiles into LaTeX resume documents.
package rendering

import "strings"

// Sanitize escapes special LaTeX characters in text.
// Special characters: \ & % $ # _ { } ~ ^ < >
// Each input rune is replaced at most once, so the backslashes and braces
// emitted by a replacement are never escaped again. Calling Sanitize on its
// own output escapes those a second time.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '$':
			result.WriteString(`\$`)
		case '#':
			result.WriteString(`\#`)
		case '_':
			result.WriteString(`\_`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '<':
			result.WriteString(`\textless{}`)
		case '>':
			result.WriteString(`\textgreater{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeURL escapes only the characters that break an \href target.
func EscapeURL(url string) string {
	if url == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(url) + 8)

	for _, r := range url {
		switch r {
		case '%', '#', '&', '_':
			result.WriteByte('\\')
		}
		result.WriteRune(r)
	}

	return result.String()
}

// NormalizeURL trims url and prefixes https:// when no scheme is given.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.Contains(url, "://") || strings.HasPrefix(url, "mailto:") {
		return url
	}
	return "https://" + url
}
