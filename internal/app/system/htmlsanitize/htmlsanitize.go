// Package htmlsanitize cleans admin-authored rich text before storage and
// display. Announcements and event descriptions are written in a rich-text
// editor and rendered unescaped, so everything passes through here first.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the rich-text subset the editor produces: formatting,
// headings, lists, links, images, code blocks, and tables. Scripts, frames,
// forms, and event-handler attributes are stripped.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowTables()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("style").OnElements("table", "tr", "th", "td")
	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")
	return p
}()

// Sanitize strips unsafe HTML, keeping the allowed rich-text subset.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes and wraps the result as template.HTML for
// unescaped rendering.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether the string looks like plain text rather than
// HTML. A string needs both "<" and ">" to count as HTML, so "5 < 10" stays
// plain.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes plain text and converts newlines to <br>, wrapped
// in a single paragraph. Empty input stays empty.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders stored content: plain text is escaped and
// paragraph-wrapped, HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
