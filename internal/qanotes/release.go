package qanotes

import (
	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/Iron-Ham/qanotes/internal/htmlbuf"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
)

// Section names used in error context.
const (
	sectionReleaseNotes = "release-notes"
	sectionQANotes      = "qa-notes"
)

// display returns the inline style value for a toggle link or region.
func display(visible bool, shown string) string {
	if visible {
		return shown
	}
	return "none"
}

// writeToggle emits the show/hide link pair for one collapsible region.
// Exactly one of the pair is visible: hide while expanded, show otherwise.
func (rs *render) writeToggle(f toggleFamily, id int, expanded bool) {
	prefix := ""
	if f.class != "" {
		prefix = f.class + " "
	}
	rs.buf.Bodyf(`<span class="%sshow-%s" id="show-%s-%d" style="display:%s"><a href="javascript:show%s('%d')">%s</a></span>`,
		prefix, f.family, f.family, id, display(!expanded, "inline-block"), f.jsName, id, f.showLabel)
	rs.buf.Bodyf(`<span class="%shide-%s" id="hide-%s-%d" style="display:%s"><a href="javascript:hide%s('%d')">%s</a></span>`,
		prefix, f.family, f.family, id, display(expanded, "inline-block"), f.jsName, id, f.hideLabel)
}

func (rs *render) writeRelease(rel releasedb.Release, expanded bool) error {
	log := rs.log.WithRelease(rel.Name)
	log.Debug("rendering release", "notes", len(rel.Notes), "expanded", expanded)

	releaseID := rs.ids.Next()

	rs.buf.Body(`<div class="release-head">`)
	rs.buf.Body(`<span class="release-name">Changes in ` + htmlbuf.Escape(rel.Name) + `</span>`)
	rs.buf.Body(`<span class="release-since">(since ` + htmlbuf.Escape(rel.Since()) + `)</span>`)
	rs.writeToggle(releaseToggle, releaseID, expanded)
	rs.buf.Body("</div>")

	rs.buf.Bodyf(`<div id="release-body-%d" class="release-body" style="display:%s">`,
		releaseID, display(expanded, "block"))

	releaseNotesID := rs.ids.Next()
	qaNotesID := rs.ids.Next()

	rs.buf.Body(`<div class="release-subhead">`)
	rs.writeToggle(releaseNotesToggle, releaseNotesID, false)
	rs.writeToggle(qaNotesToggle, qaNotesID, true)
	rs.buf.Body("</div>")

	if err := rs.writeReleaseNotes(rel, releaseNotesID); err != nil {
		return wrapRender(err, rel.Name, sectionReleaseNotes)
	}
	if err := rs.writeQANotes(rel, qaNotesID); err != nil {
		return wrapRender(err, rel.Name, sectionQANotes)
	}

	rs.buf.Body("</div>")
	return nil
}

// wrapRender attaches release context to err unless it already carries some.
func wrapRender(err error, release, section string) error {
	var re *qaerrors.RenderError
	if qaerrors.As(err, &re) {
		if re.Release == "" {
			re.WithRelease(release)
		}
		if re.Section == "" {
			re.WithSection(section)
		}
		return err
	}
	return qaerrors.NewRenderError("render release", err).WithRelease(release).WithSection(section)
}

func (rs *render) writeReleaseNotes(rel releasedb.Release, id int) error {
	locale := rs.opts.Locale
	public := rs.opts.Cascade.Cascade(rel.Notes, releasedb.FieldCustomerShort, locale)
	internal := rs.opts.Cascade.Cascade(rel.Notes, releasedb.FieldEmployeeShort, locale)

	rs.buf.Bodyf(`<div id="release-notes-%d" class="release-notes-body" style="display:none">`, id)

	rs.buf.Body(`<div class="public-release-notes"><h4>Public Release Notes</h4>`)
	if err := rs.writeHList(public, id, "<p><em>No public release notes</em></p>"); err != nil {
		return err
	}
	rs.buf.Body("</div>")

	rs.buf.Body(`<div class="internal-release-notes"><h4>Internal Release Notes</h4>`)
	if err := rs.writeHList(internal, id, "<p><em>No internal release notes</em></p>"); err != nil {
		return err
	}
	rs.buf.Body("</div>")

	rs.buf.Body(`<div class="custsrv-release-notes"><h4>Customer Service Notes</h4>`)
	err := rs.writePList(rel.Notes, internal.NoteTags, id,
		[]string{releasedb.FieldCSTechnical, releasedb.FieldEmployeeShort},
		"<p><em>No Customer Service notes</em></p>")
	if err != nil {
		return err
	}
	rs.buf.Body("</div>")

	rs.buf.Body("</div>")
	return nil
}
