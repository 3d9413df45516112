// Package markup converts the reStructuredText subset used in release notes
// into HTML fragments.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
)

// Converter turns markup into HTML. Line converts a single line of inline
// markup without any block wrapper; Block converts a multi-paragraph
// document.
type Converter interface {
	Line(src string) (string, error)
	Block(src string) (string, error)
}

// RST converts the inline roles (literal, strong, emphasis, interpreted
// text, hyperlink references) plus paragraphs, bullet lists and literal
// blocks.
type RST struct{}

var _ Converter = RST{}

// Line implements Converter.
func (RST) Line(src string) (string, error) {
	return inline(strings.TrimSpace(src))
}

// Block implements Converter.
func (RST) Block(src string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var b strings.Builder
	literalNext := false
	for _, blk := range splitBlocks(lines) {
		switch {
		case literalNext && indented(blk):
			b.WriteString("<pre>")
			b.WriteString(html.EscapeString(strings.Join(dedent(blk), "\n")))
			b.WriteString("</pre>\n")
			literalNext = false
			continue
		case isBulletList(blk):
			out, err := bulletList(blk)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
			literalNext = false
			continue
		}

		text := strings.Join(trimAll(blk), "\n")
		literalNext = strings.HasSuffix(text, "::")
		if literalNext {
			text = strings.TrimSuffix(text, "::")
			if strings.HasSuffix(text, " ") || text == "" {
				text = strings.TrimRight(text, " ")
			} else {
				text += ":"
			}
			if text == "" {
				continue
			}
		}
		out, err := inline(text)
		if err != nil {
			return "", err
		}
		b.WriteString("<p>")
		b.WriteString(out)
		b.WriteString("</p>\n")
	}
	return b.String(), nil
}

// splitBlocks groups lines into blank-line separated blocks.
func splitBlocks(lines []string) [][]string {
	var blocks [][]string
	var cur []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func indented(blk []string) bool {
	for _, l := range blk {
		if !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
			return false
		}
	}
	return true
}

func dedent(blk []string) []string {
	minIndent := -1
	for _, l := range blk {
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	out := make([]string, len(blk))
	for i, l := range blk {
		out[i] = l[minIndent:]
	}
	return out
}

func trimAll(blk []string) []string {
	out := make([]string, len(blk))
	for i, l := range blk {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

func bulletMarker(l string) bool {
	return strings.HasPrefix(l, "- ") || strings.HasPrefix(l, "* ") || strings.HasPrefix(l, "+ ")
}

func isBulletList(blk []string) bool {
	return bulletMarker(blk[0])
}

// bulletList renders a block whose first line is a bullet. Unindented lines
// that are not bullets continue the previous item.
func bulletList(blk []string) (string, error) {
	var items []string
	for _, l := range blk {
		if bulletMarker(l) {
			items = append(items, strings.TrimSpace(l[2:]))
			continue
		}
		items[len(items)-1] += "\n" + strings.TrimSpace(l)
	}

	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, item := range items {
		out, err := inline(item)
		if err != nil {
			return "", err
		}
		b.WriteString("<li>")
		b.WriteString(out)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String(), nil
}

var linkTarget = regexp.MustCompile(`^(.*?)\s*<([^<>]+)>$`)

// inline converts inline roles. Unterminated literals are an error; other
// unmatched delimiters are kept as text.
func inline(s string) (string, error) {
	var b strings.Builder
	plain := 0
	flush := func(to int) {
		b.WriteString(html.EscapeString(s[plain:to]))
	}

	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "``"):
			end := strings.Index(s[i+2:], "``")
			if end < 0 {
				return "", qaerrors.Wrapf(qaerrors.ErrMarkup, "unterminated inline literal at offset %d", i)
			}
			flush(i)
			b.WriteString("<code>")
			b.WriteString(html.EscapeString(s[i+2 : i+2+end]))
			b.WriteString("</code>")
			i += end + 4
			plain = i

		case strings.HasPrefix(s[i:], "**"):
			end := strings.Index(s[i+2:], "**")
			if end <= 0 || !tight(s[i+2:i+2+end]) {
				i += 2
				continue
			}
			flush(i)
			fmt.Fprintf(&b, "<strong>%s</strong>", html.EscapeString(s[i+2:i+2+end]))
			i += end + 4
			plain = i

		case s[i] == '*':
			end := strings.IndexByte(s[i+1:], '*')
			if end <= 0 || !tight(s[i+1:i+1+end]) {
				i++
				continue
			}
			flush(i)
			fmt.Fprintf(&b, "<em>%s</em>", html.EscapeString(s[i+1:i+1+end]))
			i += end + 2
			plain = i

		case s[i] == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end <= 0 || !tight(s[i+1:i+1+end]) {
				i++
				continue
			}
			flush(i)
			inner := s[i+1 : i+1+end]
			next := i + end + 2
			if next < len(s) && s[next] == '_' {
				next++
				if next < len(s) && s[next] == '_' {
					next++
				}
				b.WriteString(link(inner))
			} else {
				fmt.Fprintf(&b, "<cite>%s</cite>", html.EscapeString(inner))
			}
			i = next
			plain = i

		default:
			i++
		}
	}
	flush(len(s))
	return b.String(), nil
}

// tight reports whether inline markup content starts and ends with
// non-whitespace, which is what makes a delimiter pair markup at all.
func tight(inner string) bool {
	return inner != "" && strings.TrimSpace(inner) == inner
}

func link(ref string) string {
	text, target := ref, ref
	if m := linkTarget.FindStringSubmatch(ref); m != nil {
		text, target = m[1], m[2]
		if text == "" {
			text = target
		}
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(target), html.EscapeString(text))
}
