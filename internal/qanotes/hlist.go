package qanotes

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/qanotes/internal/cascade"
)

// highlightClass names the class shared by every rendition of one note in
// one release-notes block.
func highlightClass(sectionID, tag int) string {
	return fmt.Sprintf("r%dp%d", sectionID, tag)
}

// hoverAttrs returns the class, onmouseover and onmouseleave attributes that
// highlight every element carrying any of classes while the pointer is over
// the element. The result starts with a space and is meant to follow a tag
// name directly.
func hoverAttrs(classes []string) string {
	on := make([]string, len(classes))
	off := make([]string, len(classes))
	for i, c := range classes {
		on[i] = toggleHighlight(c, true)
		off[i] = toggleHighlight(c, false)
	}
	return fmt.Sprintf(` class="%s" onmouseover="%s" onmouseleave="%s"`,
		strings.Join(classes, " "), strings.Join(on, ";"), strings.Join(off, ";"))
}

func toggleHighlight(class string, on bool) string {
	return fmt.Sprintf("Array.prototype.forEach.call(document.getElementsByClassName('%s'), function(e){e.classList.toggle('rnhover', %t)})", class, on)
}

// writeHList renders a merged forest as nested lists, or def when the forest
// is empty. Each line is highlightable together with every other rendition
// of the notes that contributed it.
func (rs *render) writeHList(res cascade.Result, sectionID int, def string) error {
	if len(res.Forest) == 0 {
		rs.buf.Body(def)
		return nil
	}
	return rs.writeForest(res.Forest, sectionID)
}

func (rs *render) writeForest(nodes []*cascade.Node, sectionID int) error {
	if len(nodes) == 0 {
		return nil
	}
	rs.buf.Body("<ul>")
	for _, n := range nodes {
		classes := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			classes[i] = highlightClass(sectionID, t)
		}
		head, err := rs.opts.Markup.Line(n.Head)
		if err != nil {
			return err
		}
		rs.buf.Body("<li><span" + hoverAttrs(classes) + ">" + head + "</span>")
		if err := rs.writeForest(n.Children, sectionID); err != nil {
			return err
		}
		rs.buf.Body("</li>")
	}
	rs.buf.Body("</ul>")
	return nil
}
