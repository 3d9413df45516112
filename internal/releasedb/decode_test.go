package releasedb

import (
	"os"
	"path/filepath"
	"testing"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
)

const sampleJSON = `{
  "project_name": {"en-US": "Widget"},
  "build-uniqueness-list-rst": ["b", "A"],
  "releases": [
    {
      "name": "2.0",
      "after": ["1.9", "1.8.1"],
      "notes": [
        {
          "id": "abc",
          "tickets": ["https://example.atlassian.net/browse/WID-1", null],
          "employee-short-loc-hlist-rst": {"en-US": [{"Fixed crash": ["on launch"]}, "second"]},
          "cs-technical-loc-rst": {"en-US": ""},
          "employee-testing-loc-rst": {"en-US": "Launch it."}
        }
      ]
    },
    {"name": "1.9", "commit": "deadbeef"}
  ]
}`

func TestDecodeJSON(t *testing.T) {
	db, err := Decode([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got := db.Project(DefaultLocale); got != "Widget" {
		t.Errorf("Project() = %q, want %q", got, "Widget")
	}
	if len(db.Releases) != 2 {
		t.Fatalf("len(Releases) = %d, want 2", len(db.Releases))
	}
	if len(db.BuildUniqueness) != 2 {
		t.Errorf("len(BuildUniqueness) = %d, want 2", len(db.BuildUniqueness))
	}

	rel := db.Releases[0]
	if rel.Since() != "1.9 and 1.8.1" {
		t.Errorf("Since() = %q", rel.Since())
	}
	if db.Releases[1].Since() != "the dawn of time" {
		t.Errorf("Since() for release without predecessors = %q", db.Releases[1].Since())
	}
	if db.Releases[1].Commit != "deadbeef" {
		t.Errorf("Commit = %q, want deadbeef", db.Releases[1].Commit)
	}

	note := rel.Notes[0]
	if len(note.Tickets) != 2 || note.Tickets[1] != nil {
		t.Fatalf("unexpected tickets: %v", note.Tickets)
	}
	if *note.Tickets[0] != "https://example.atlassian.net/browse/WID-1" {
		t.Errorf("ticket[0] = %q", *note.Tickets[0])
	}
	if note.Has("id") {
		t.Error("non-localized bookkeeping fields should not be kept")
	}

	short, ok := note.Lookup(FieldEmployeeShort, DefaultLocale)
	if !ok {
		t.Fatal("expected employee short field")
	}
	if short.Kind != KindHierarchy {
		t.Fatalf("Kind = %v, want hierarchy", short.Kind)
	}
	if !short.Entries[0].Keyed || short.Entries[0].Head != "Fixed crash" {
		t.Errorf("first entry = %+v, want keyed 'Fixed crash'", short.Entries[0])
	}
	if len(short.Entries[0].Children) != 1 || short.Entries[0].Children[0].Head != "on launch" {
		t.Errorf("children = %+v", short.Entries[0].Children)
	}
	if head, _ := short.Headline(); head != "Fixed crash" {
		t.Errorf("Headline() = %q", head)
	}

	cs, ok := note.Lookup(FieldCSTechnical, DefaultLocale)
	if !ok {
		t.Fatal("present-but-empty field should still be present")
	}
	if !cs.IsEmpty() {
		t.Error("expected empty cs-technical value")
	}
	if note.Has(FieldCustomerShort) {
		t.Error("absent field reported as present")
	}
}

func TestDecodeYAML(t *testing.T) {
	doc := `
project_name:
  en-US: Widget
releases:
  - name: "3.1"
    notes:
      - employee-short-loc-hlist-rst:
          en-US:
            - head: Explicit head
              children:
                - Child
        tickets: [null]
`
	db, err := Decode([]byte(doc), FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	v, ok := db.Releases[0].Notes[0].Lookup(FieldEmployeeShort, DefaultLocale)
	if !ok || v.Kind != KindHierarchy {
		t.Fatalf("expected hierarchical value, got %+v", v)
	}
	if v.Entries[0].Keyed {
		t.Error("explicit head/children entries are not keyed")
	}
	if v.Entries[0].Children[0].Head != "Child" {
		t.Errorf("child head = %q", v.Entries[0].Children[0].Head)
	}
	if tickets := db.Releases[0].Notes[0].Tickets; len(tickets) != 1 || tickets[0] != nil {
		t.Errorf("tickets = %v, want [nil]", tickets)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		target error
	}{
		{"missing project name", `{"releases": []}`, qaerrors.ErrMissingField},
		{"missing releases", `{"project_name": {"en-US": "x"}}`, qaerrors.ErrMissingField},
		{"release without name", `{"project_name": {"en-US": "x"}, "releases": [{"after": []}]}`, qaerrors.ErrMissingField},
		{"releases not a list", `{"project_name": {"en-US": "x"}, "releases": 3}`, qaerrors.ErrMalformedDatabase},
		{"bad ticket", `{"project_name": {"en-US": "x"}, "releases": [{"name": "1", "notes": [{"tickets": [4]}]}]}`, qaerrors.ErrMalformedDatabase},
		{"bad content", `{"project_name": {"en-US": "x"}, "releases": [{"name": "1", "notes": [{"employee-testing-loc-rst": {"en-US": 7}}]}]}`, qaerrors.ErrMalformedDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), FormatJSON)
			if err == nil {
				t.Fatal("expected error")
			}
			if !qaerrors.Is(err, tt.target) {
				t.Errorf("error %v does not match %v", err, tt.target)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		var nf *qaerrors.NotFoundError
		if !qaerrors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("decode errors carry the path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qa.json")
		if err := os.WriteFile(path, []byte(`{"releases": []}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		var dbErr *qaerrors.DatabaseError
		if !qaerrors.As(err, &dbErr) {
			t.Fatalf("expected DatabaseError, got %v", err)
		}
		if dbErr.Path != path {
			t.Errorf("Path = %q, want %q", dbErr.Path, path)
		}
	})

	t.Run("yaml by extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qa.yml")
		doc := "project_name:\n  en-US: Y\nreleases:\n  - name: '1'\n"
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		db, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if db.Releases[0].Name != "1" {
			t.Errorf("Name = %q", db.Releases[0].Name)
		}
	})
}
