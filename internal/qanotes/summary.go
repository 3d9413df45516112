package qanotes

import (
	"fmt"

	"github.com/Iron-Ham/qanotes/internal/htmlbuf"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
)

const (
	missingHeadline = "Internal release note missing"
	missingTesting  = "`QA Notes missing`"
	secretBadge     = `<span style="color: red">BAD DEVELOPER NO SECRET WORK</span>`
)

// writeQANotes renders the per-note testing list of one release.
func (rs *render) writeQANotes(rel releasedb.Release, id int) error {
	rs.buf.Bodyf(`<div id="qa-notes-%d">`, id)
	if len(rel.Notes) == 0 {
		rs.buf.Body(`<p class="testing"><em>No changes</em></p>`)
		rs.buf.Body("</div>")
		return nil
	}

	rs.buf.Body("<ul>")
	for _, note := range rel.Notes {
		if err := rs.writeNoteSummary(note); err != nil {
			return err
		}
	}
	rs.buf.Body("</ul>")
	rs.buf.Body("</div>")
	return nil
}

func (rs *render) writeNoteSummary(note releasedb.Note) error {
	locale := rs.opts.Locale

	headline := missingHeadline
	if v, ok := note.Lookup(releasedb.FieldEmployeeShort, locale); ok {
		if h, ok := v.Headline(); ok {
			headline = h
		} else if v.Kind == releasedb.KindFlat && v.Text != "" {
			headline = v.Text
		}
	}
	head, err := rs.opts.Markup.Line(headline)
	if err != nil {
		return err
	}

	rs.buf.Body(`<li><span class="note-head"><span class="internal-short">` + head + `</span>`)

	refs := note.Tickets
	if len(refs) == 0 {
		// No tickets at all is treated as undisclosed work.
		refs = []*string{nil}
	}
	for _, ref := range refs {
		badge, err := rs.ticketBadge(ref)
		if err != nil {
			return err
		}
		rs.buf.Body(`<span class="ticket">` + badge + `</span>`)
	}

	technical := note.Text(releasedb.FieldEmployeeTech, locale)
	techID := 0
	if technical != "" {
		techID = rs.ids.Next()
		rs.writeToggle(technicalToggle, techID, false)
	}
	rs.buf.Body("</span>")

	if technical != "" {
		out, err := rs.opts.Markup.Block(technical)
		if err != nil {
			return err
		}
		rs.buf.Bodyf(`<div class="technical" id="technical-%d" style="display:none">`, techID)
		rs.buf.Body(out)
		rs.buf.Body("</div>")
	}

	testing := note.Text(releasedb.FieldEmployeeTesting, locale)
	if testing == "" {
		testing = missingTesting
	}
	out, err := rs.opts.Markup.Block(testing)
	if err != nil {
		return err
	}
	rs.buf.Body(`<div class="testing">` + out + `</div></li>`)
	return nil
}

// ticketBadge renders one ticket reference. A nil reference marks work with
// no ticket and gets the warning badge instead of a link.
func (rs *render) ticketBadge(ref *string) (string, error) {
	if ref == nil {
		return secretBadge, nil
	}
	name, err := rs.opts.Tickets.DisplayName(*ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, htmlbuf.Escape(*ref), htmlbuf.Escape(name)), nil
}
