package utils

import "html"

// EscapeString escapes user text (author, content) before it is embedded in
// markup.
func EscapeString(s string) string {
	return html.EscapeString(s)
}
