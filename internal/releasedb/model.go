// Package releasedb models the release database that QA Notes pages are
// rendered from, and decodes it from JSON or YAML.
//
// Content values are classified exactly once, while decoding, into a small
// tagged union (see [Value]). Render code switches on [Kind] and never
// inspects raw shapes again.
package releasedb

import "strings"

// DefaultLocale is the only locale the renderer consumes.
const DefaultLocale = "en-US"

// Note field keys.
const (
	FieldCustomerShort   = "customer-short-loc-hlist-rst"
	FieldEmployeeShort   = "employee-short-loc-hlist-rst"
	FieldCSTechnical     = "cs-technical-loc-rst"
	FieldEmployeeTech    = "employee-technical-loc-rst"
	FieldEmployeeTesting = "employee-testing-loc-rst"
	FieldTickets         = "tickets"
	FieldBuildUniqueness = "build-uniqueness-list-rst"
	FieldProjectName     = "project_name"
	FieldReleases        = "releases"
	FieldReleaseName     = "name"
	FieldReleaseAfter    = "after"
	FieldReleaseNotes    = "notes"
	FieldReleaseCommit   = "commit"
)

// Database is an ordered list of releases, newest first.
type Database struct {
	ProjectName     LocalizedContent
	Releases        []Release
	BuildUniqueness []string
}

// Project returns the project name in the given locale.
func (d *Database) Project(locale string) string {
	v, _ := d.ProjectName.Lookup(locale)
	return v.Text
}

// Release is one versioned group of notes.
type Release struct {
	Name   string
	After  []string
	Notes  []Note
	Commit string
}

// Since returns the human readable predecessor list for the release head.
func (r Release) Since() string {
	if len(r.After) == 0 {
		return "the dawn of time"
	}
	return strings.Join(r.After, " and ")
}

// Note is one change-log entry. Fields holds every localized content field
// the author wrote, keyed by field name; a key being present with an empty
// value is meaningful and differs from the key being absent.
type Note struct {
	Fields  map[string]LocalizedContent
	Tickets []*string
}

// Has reports whether the note carries the field at all, regardless of value.
func (n Note) Has(field string) bool {
	_, ok := n.Fields[field]
	return ok
}

// Lookup returns the field's value in the given locale. The boolean is false
// when either the field or the locale is absent.
func (n Note) Lookup(field, locale string) (Value, bool) {
	lc, ok := n.Fields[field]
	if !ok {
		return Value{}, false
	}
	return lc.Lookup(locale)
}

// Text returns the flat text of a field, or "" when absent or hierarchical.
func (n Note) Text(field, locale string) string {
	v, ok := n.Lookup(field, locale)
	if !ok || v.Kind != KindFlat {
		return ""
	}
	return v.Text
}

// LocalizedContent maps a locale to its value.
type LocalizedContent map[string]Value

// Lookup returns the value for locale and whether it was present.
func (lc LocalizedContent) Lookup(locale string) (Value, bool) {
	v, ok := lc[locale]
	return v, ok
}

// Kind discriminates the variants of Value.
type Kind int

const (
	// KindFlat is a single markup string.
	KindFlat Kind = iota
	// KindHierarchy is an ordered list of Entry trees.
	KindHierarchy
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindHierarchy:
		return "hierarchy"
	default:
		return "unknown"
	}
}

// Value is either flat markup text or a hierarchical list.
type Value struct {
	Kind    Kind
	Text    string
	Entries []Entry
}

// Flat builds a flat value.
func Flat(text string) Value {
	return Value{Kind: KindFlat, Text: text}
}

// Hierarchy builds a hierarchical value.
func Hierarchy(entries ...Entry) Value {
	return Value{Kind: KindHierarchy, Entries: entries}
}

// IsEmpty reports whether the value would render nothing.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindHierarchy:
		return len(v.Entries) == 0
	default:
		return v.Text == ""
	}
}

// Entry is one node of an authored hierarchy. Keyed is set when the author
// wrote the node as a single-key mapping {head: [children...]}; the key is
// the head text either way.
type Entry struct {
	Head     string
	Children []Entry
	Keyed    bool
}

// Leaf builds an entry without children.
func Leaf(head string) Entry {
	return Entry{Head: head}
}

// Branch builds a keyed entry with children.
func Branch(head string, children ...Entry) Entry {
	return Entry{Head: head, Children: children, Keyed: true}
}

// Headline returns the head text of the first top-level entry, if any.
func (v Value) Headline() (string, bool) {
	if v.Kind != KindHierarchy || len(v.Entries) == 0 {
		return "", false
	}
	return v.Entries[0].Head, v.Entries[0].Head != ""
}

// Ticket returns a pointer to url, for building ticket lists in code.
func Ticket(url string) *string {
	return &url
}
