package releasedb

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a database file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from the file extension. Anything that is not
// YAML is read as JSON, which is what the release tooling emits.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and decodes the database at path.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if qaerrors.Is(err, fs.ErrNotExist) {
			return nil, qaerrors.NewNotFoundError("database", path).WithCause(err)
		}
		return nil, qaerrors.NewDatabaseError("read database", err).WithPath(path)
	}

	db, err := Decode(data, FormatForPath(path))
	if err != nil {
		var dbErr *qaerrors.DatabaseError
		if qaerrors.As(err, &dbErr) {
			dbErr.WithPath(path)
		}
		return nil, err
	}
	return db, nil
}

// Decode parses a serialized database.
func Decode(data []byte, format Format) (*Database, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, qaerrors.NewDatabaseError("parse json", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, qaerrors.NewDatabaseError("parse yaml", err)
		}
	default:
		return nil, qaerrors.NewDatabaseError(fmt.Sprintf("format %q", format), qaerrors.ErrUnsupportedFormat)
	}
	return fromRaw(raw)
}

func fromRaw(raw any) (*Database, error) {
	top, ok := asMap(raw)
	if !ok {
		return nil, malformed("", "top level must be a mapping")
	}

	db := &Database{}

	name, ok := top[FieldProjectName]
	if !ok {
		return nil, missing(FieldProjectName)
	}
	lc, err := decodeLocalized(name, FieldProjectName)
	if err != nil {
		return nil, err
	}
	db.ProjectName = lc

	releases, ok := top[FieldReleases]
	if !ok {
		return nil, missing(FieldReleases)
	}
	list, ok := releases.([]any)
	if !ok && releases != nil {
		return nil, malformed(FieldReleases, "must be a list")
	}
	for i, r := range list {
		rel, err := decodeRelease(r, fmt.Sprintf("%s[%d]", FieldReleases, i))
		if err != nil {
			return nil, err
		}
		db.Releases = append(db.Releases, rel)
	}

	if bu, ok := top[FieldBuildUniqueness]; ok && bu != nil {
		items, err := stringList(bu, FieldBuildUniqueness)
		if err != nil {
			return nil, err
		}
		db.BuildUniqueness = items
	}

	return db, nil
}

func decodeRelease(raw any, path string) (Release, error) {
	m, ok := asMap(raw)
	if !ok {
		return Release{}, malformed(path, "release must be a mapping")
	}

	var rel Release
	name, _ := m[FieldReleaseName].(string)
	if name == "" {
		return Release{}, missing(path + "." + FieldReleaseName)
	}
	rel.Name = name

	if after, ok := m[FieldReleaseAfter]; ok && after != nil {
		items, err := stringList(after, path+"."+FieldReleaseAfter)
		if err != nil {
			return Release{}, err
		}
		rel.After = items
	}

	if commit, ok := m[FieldReleaseCommit].(string); ok {
		rel.Commit = commit
	}

	if notes, ok := m[FieldReleaseNotes]; ok && notes != nil {
		list, ok := notes.([]any)
		if !ok {
			return Release{}, malformed(path+"."+FieldReleaseNotes, "must be a list")
		}
		for i, n := range list {
			note, err := decodeNote(n, fmt.Sprintf("%s.%s[%d]", path, FieldReleaseNotes, i))
			if err != nil {
				return Release{}, err
			}
			rel.Notes = append(rel.Notes, note)
		}
	}

	return rel, nil
}

func decodeNote(raw any, path string) (Note, error) {
	m, ok := asMap(raw)
	if !ok {
		return Note{}, malformed(path, "note must be a mapping")
	}

	note := Note{Fields: make(map[string]LocalizedContent)}
	for key, val := range m {
		fieldPath := path + "." + key
		if key == FieldTickets {
			tickets, err := ticketList(val, fieldPath)
			if err != nil {
				return Note{}, err
			}
			note.Tickets = tickets
			continue
		}
		if !isLocalizedField(key) {
			// Notes carry plenty of bookkeeping (ids, commits, risk...) that
			// this view does not consume.
			continue
		}
		lc, err := decodeLocalized(val, fieldPath)
		if err != nil {
			return Note{}, err
		}
		note.Fields[key] = lc
	}
	return note, nil
}

// isLocalizedField matches the "-loc-" naming convention used for
// localized note fields.
func isLocalizedField(key string) bool {
	return strings.Contains(key, "-loc-")
}

func decodeLocalized(raw any, path string) (LocalizedContent, error) {
	if raw == nil {
		return LocalizedContent{}, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, malformed(path, "must be a mapping of locale to content")
	}
	lc := make(LocalizedContent, len(m))
	for locale, val := range m {
		v, err := decodeValue(val, path+"."+locale)
		if err != nil {
			return nil, err
		}
		lc[locale] = v
	}
	return lc, nil
}

func decodeValue(raw any, path string) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Flat(""), nil
	case string:
		return Flat(v), nil
	case []any:
		entries, err := decodeEntries(v, path)
		if err != nil {
			return Value{}, err
		}
		return Hierarchy(entries...), nil
	default:
		return Value{}, malformed(path, fmt.Sprintf("unsupported content type %T", raw))
	}
}

func decodeEntries(list []any, path string) ([]Entry, error) {
	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		e, err := decodeEntry(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(raw any, path string) (Entry, error) {
	if s, ok := raw.(string); ok {
		return Leaf(s), nil
	}
	m, ok := asMap(raw)
	if !ok {
		return Entry{}, malformed(path, fmt.Sprintf("unsupported entry type %T", raw))
	}

	// Explicit {head, children} form.
	if head, ok := m["head"].(string); ok {
		e := Entry{Head: head}
		if children, ok := m["children"].([]any); ok {
			kids, err := decodeEntries(children, path+".children")
			if err != nil {
				return Entry{}, err
			}
			e.Children = kids
		}
		return e, nil
	}

	if len(m) != 1 {
		return Entry{}, malformed(path, "keyed entry must have exactly one key")
	}
	for head, val := range m {
		e := Entry{Head: head, Keyed: true}
		switch children := val.(type) {
		case nil:
		case string:
			e.Children = []Entry{Leaf(children)}
		case []any:
			kids, err := decodeEntries(children, path+"."+head)
			if err != nil {
				return Entry{}, err
			}
			e.Children = kids
		default:
			return Entry{}, malformed(path, fmt.Sprintf("unsupported children type %T", val))
		}
		return e, nil
	}
	return Entry{}, nil
}

func ticketList(raw any, path string) ([]*string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(path, "must be a list")
	}
	tickets := make([]*string, 0, len(list))
	for i, item := range list {
		switch t := item.(type) {
		case nil:
			tickets = append(tickets, nil)
		case string:
			tickets = append(tickets, Ticket(t))
		default:
			return nil, malformed(fmt.Sprintf("%s[%d]", path, i), "ticket must be a URL or null")
		}
	}
	return tickets, nil
}

func stringList(raw any, path string) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(path, "must be a list of strings")
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, malformed(fmt.Sprintf("%s[%d]", path, i), "must be a string")
		}
		out = append(out, s)
	}
	return out, nil
}

// asMap normalizes both JSON objects and YAML mappings.
func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func malformed(field, msg string) error {
	return qaerrors.NewDatabaseError(msg, qaerrors.ErrMalformedDatabase).WithField(field)
}

func missing(field string) error {
	return qaerrors.NewDatabaseError("decode", qaerrors.ErrMissingField).WithField(field)
}
