package qanotes

import (
	"fmt"

	"github.com/Iron-Ham/qanotes/internal/cascade"
	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
)

// writePList renders one block per note using the first of keys the note
// carries. Selection is by presence: a note that has the first key with an
// empty value contributes nothing, even if a later key has content. def is
// written once when no note contributed.
//
// noteTags are the tags a cascade over the same notes assigned; a block's
// highlight class must agree with them, so any disagreement is an error.
func (rs *render) writePList(notes []releasedb.Note, noteTags []int, sectionID int, keys []string, def string) error {
	if len(noteTags) != len(notes) {
		return qaerrors.NewRenderError(
			fmt.Sprintf("cascade tagged %d of %d notes", len(noteTags), len(notes)),
			qaerrors.ErrTagMismatch).Internal()
	}

	wrote := false
	tag := -1
	for i, note := range notes {
		tag++
		if noteTags[i] != tag {
			return qaerrors.NewRenderError(
				fmt.Sprintf("note %d tagged %d, expected %d", i, noteTags[i], tag),
				qaerrors.ErrTagMismatch).Internal()
		}

		key, ok := firstPresent(note, keys)
		if !ok {
			continue
		}
		v, _ := note.Lookup(key, rs.opts.Locale)
		if v.IsEmpty() {
			continue
		}

		rs.buf.Body("<div" + hoverAttrs([]string{highlightClass(sectionID, noteTags[i])}) + ">")
		if err := rs.writePListValue(note, key, v); err != nil {
			return err
		}
		rs.buf.Body("</div>")
		wrote = true
	}

	if !wrote {
		rs.buf.Body(def)
	}
	return nil
}

func firstPresent(note releasedb.Note, keys []string) (string, bool) {
	for _, k := range keys {
		if note.Has(k) {
			return k, true
		}
	}
	return "", false
}

func (rs *render) writePListValue(note releasedb.Note, key string, v releasedb.Value) error {
	if v.Kind == releasedb.KindFlat {
		out, err := rs.opts.Markup.Block(v.Text)
		if err != nil {
			return err
		}
		rs.buf.Body(out)
		return nil
	}

	res := rs.opts.Cascade.Cascade([]releasedb.Note{note}, key, rs.opts.Locale)
	for _, top := range res.Forest {
		head, err := rs.opts.Markup.Line(top.Head)
		if err != nil {
			return err
		}
		rs.buf.Body("<p>" + head)
		if err := rs.writePlainList(top.Children); err != nil {
			return err
		}
		rs.buf.Body("</p>\n")
	}
	return nil
}

// writePlainList renders nested lists without highlight wiring.
func (rs *render) writePlainList(nodes []*cascade.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	rs.buf.Body("<ul>")
	for _, n := range nodes {
		head, err := rs.opts.Markup.Line(n.Head)
		if err != nil {
			return err
		}
		rs.buf.Body("<li>" + head)
		if err := rs.writePlainList(n.Children); err != nil {
			return err
		}
		rs.buf.Body("</li>")
	}
	rs.buf.Body("</ul>")
	return nil
}
