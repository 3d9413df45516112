// Package qanotes renders a release database into the QA Notes page: a
// single self-contained HTML document that pairs each release's public,
// internal and customer-service notes with per-change testing instructions.
//
// A Renderer holds only configuration. Everything that changes during a
// render (the id allocator, the output buffer) lives in a per-call render
// value, so one Renderer can serve any number of sequential or concurrent
// renders.
package qanotes

import (
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/qanotes/internal/cascade"
	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/Iron-Ham/qanotes/internal/htmlbuf"
	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/Iron-Ham/qanotes/internal/markup"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
	"github.com/Iron-Ham/qanotes/internal/tickets"
	"golang.org/x/text/cases"
)

// DefaultMaxReleases is how many releases a page shows.
const DefaultMaxReleases = 5

// TimestampLayout formats the "built on" line.
const TimestampLayout = "01/02/2006 at 03:04 PM MST"

// Options configures a Renderer. Zero fields take defaults in New.
type Options struct {
	Markup  markup.Converter
	Tickets tickets.Resolver
	Cascade cascade.Builder
	Logger  *logging.Logger

	// Clock supplies the build timestamp. Tests pin it for reproducible output.
	Clock func() time.Time
	// OmitTimestamp drops the "built on" clause entirely.
	OmitTimestamp bool

	// MaxReleases caps the rendered releases; non-positive means DefaultMaxReleases.
	MaxReleases int
	Locale      string
}

// Renderer renders QA Notes pages.
type Renderer struct {
	opts Options
}

// New builds a Renderer, filling defaults for unset options.
func New(opts Options) (*Renderer, error) {
	if opts.Markup == nil {
		opts.Markup = markup.RST{}
	}
	if opts.Cascade == nil {
		opts.Cascade = cascade.Merger{}
	}
	if opts.Tickets == nil {
		m, err := tickets.NewMatcher(nil, true)
		if err != nil {
			return nil, err
		}
		opts.Tickets = m
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.MaxReleases <= 0 {
		opts.MaxReleases = DefaultMaxReleases
	}
	if opts.Locale == "" {
		opts.Locale = releasedb.DefaultLocale
	}
	return &Renderer{opts: opts}, nil
}

// render is the state of one Render call.
type render struct {
	*Renderer
	ids *Allocator
	buf *htmlbuf.Buffer
	log *logging.Logger
}

// Render produces the complete page for db. Any error aborts the render and
// no partial document is returned.
func (r *Renderer) Render(db *releasedb.Database) (string, error) {
	if err := r.validate(db); err != nil {
		return "", err
	}

	rs := &render{
		Renderer: r,
		ids:      NewAllocator(),
		buf:      &htmlbuf.Buffer{},
		log:      r.opts.Logger,
	}
	if err := rs.document(db); err != nil {
		return "", err
	}
	return rs.buf.String(), nil
}

func (r *Renderer) validate(db *releasedb.Database) error {
	if db == nil || len(db.Releases) == 0 {
		return qaerrors.NewValidationError("nothing to render").
			WithField(releasedb.FieldReleases).
			WithCause(qaerrors.ErrNoReleases)
	}
	if _, ok := db.ProjectName.Lookup(r.opts.Locale); !ok {
		return qaerrors.NewValidationError("project name missing for locale").
			WithField(releasedb.FieldProjectName + "." + r.opts.Locale).
			WithCause(qaerrors.ErrMissingField)
	}
	for i, rel := range db.Releases {
		if rel.Name == "" {
			return qaerrors.NewValidationError("release name is required").
				WithField(releasedb.FieldReleases).
				WithValue(i).
				WithCause(qaerrors.ErrMissingField)
		}
	}
	return nil
}

func (rs *render) document(db *releasedb.Database) error {
	newest := db.Releases[0]
	title := "QA Notes for " + htmlbuf.Escape(db.Project(rs.opts.Locale)) + " v" + htmlbuf.Escape(newest.Name)

	rs.buf.Head("<title>" + title + "</title>")
	rs.buf.CSS(stylesheet)
	rs.buf.JS(toggleScript)

	rs.buf.Body("<h2>" + title + "</h2>")
	rs.buf.Body(`<p>Commit <code class="unimportant-long-sha1">`)
	rs.buf.Body(htmlbuf.Escape(commitOf(db.Releases)))
	rs.buf.Body("</code>")
	if !rs.opts.OmitTimestamp {
		rs.buf.Body(", built on ")
		rs.buf.Body(htmlbuf.Escape(rs.opts.Clock().Format(TimestampLayout)))
	}
	rs.buf.Body("</p>")

	if err := rs.writeBuildUniqueness(db.BuildUniqueness); err != nil {
		return err
	}

	shown := db.Releases
	if len(shown) > rs.opts.MaxReleases {
		rs.log.Debug("dropping older releases",
			"shown", rs.opts.MaxReleases,
			"dropped", len(shown)-rs.opts.MaxReleases)
		shown = shown[:rs.opts.MaxReleases]
	}
	for i, rel := range shown {
		if err := rs.writeRelease(rel, i == 0); err != nil {
			return err
		}
	}
	return nil
}

// commitOf approximates an uncommitted working copy (newest release without
// a commit) with its predecessor's commit.
func commitOf(releases []releasedb.Release) string {
	if releases[0].Commit != "" {
		return releases[0].Commit
	}
	if len(releases) > 1 && releases[1].Commit != "" {
		return releases[1].Commit
	}
	return "???"
}

func (rs *render) writeBuildUniqueness(items []string) error {
	if len(items) == 0 {
		return nil
	}

	sorted := sortFolded(items)

	rs.buf.Body(`<div class="build-uniq-div"><span class="head">Build Uniqueness</span>`)
	rs.buf.Body(`<div class="build-uniq-data">`)
	for _, item := range sorted {
		out, err := rs.opts.Markup.Line(item)
		if err != nil {
			return qaerrors.NewRenderError("convert build uniqueness entry", err).WithSection("build-uniqueness")
		}
		rs.buf.Body(`<span class="data">` + out + `</span>`)
	}
	rs.buf.Body("</div></div>")
	return nil
}

// sortFolded sorts case-insensitively without touching the input.
func sortFolded(items []string) []string {
	fold := cases.Fold()
	type keyed struct{ key, val string }
	ks := make([]keyed, len(items))
	for i, s := range items {
		ks[i] = keyed{key: fold.String(s), val: s}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return strings.Compare(a.key, b.key)
	})
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.val
	}
	return out
}
