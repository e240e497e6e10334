package sanitize

import (
	"html"
	"strings"
)

// Name HTML-escapes a user-supplied name field.
func Name(s string) string {
	return html.EscapeString(s)
}

// Email normalizes an email address to its canonical lowercase form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
