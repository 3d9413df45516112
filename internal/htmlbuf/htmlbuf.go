// Package htmlbuf accumulates the head, stylesheet, script and body of a
// single-file HTML page and assembles them in one pass.
package htmlbuf

import (
	"fmt"
	"html"
	"strings"
)

// Buffer collects page sections. The zero value is ready to use.
type Buffer struct {
	head strings.Builder
	css  strings.Builder
	js   strings.Builder
	body strings.Builder
}

// Head appends raw markup to <head>.
func (b *Buffer) Head(s string) { b.head.WriteString(s) }

// CSS appends to the embedded stylesheet.
func (b *Buffer) CSS(s string) { b.css.WriteString(s) }

// JS appends to the embedded script.
func (b *Buffer) JS(s string) { b.js.WriteString(s) }

// Body appends raw markup to <body>.
func (b *Buffer) Body(s string) { b.body.WriteString(s) }

// Bodyf appends formatted markup to <body>.
func (b *Buffer) Bodyf(format string, args ...any) {
	fmt.Fprintf(&b.body, format, args...)
}

// String assembles the complete document.
func (b *Buffer) String() string {
	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	out.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	out.WriteString(b.head.String())
	if b.css.Len() > 0 {
		out.WriteString("\n<style>\n")
		out.WriteString(b.css.String())
		out.WriteString("\n</style>")
	}
	if b.js.Len() > 0 {
		out.WriteString("\n<script>\n")
		out.WriteString(b.js.String())
		out.WriteString("\n</script>")
	}
	out.WriteString("\n</head>\n<body>\n")
	out.WriteString(b.body.String())
	out.WriteString("\n</body>\n</html>\n")
	return out.String()
}

// Escape escapes text for element content and quoted attribute values.
func Escape(s string) string {
	return html.EscapeString(s)
}
