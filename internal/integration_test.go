// Package internal holds tests that drive several packages together: a
// database on disk is decoded, rendered, and re-rendered as it changes.
package internal

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/Iron-Ham/qanotes/internal/qanotes"
	"github.com/Iron-Ham/qanotes/internal/releasedb"
	"github.com/Iron-Ham/qanotes/internal/testutil"
	"github.com/Iron-Ham/qanotes/internal/tickets"
	"github.com/Iron-Ham/qanotes/internal/watch"
)

func newRenderer(t *testing.T) *qanotes.Renderer {
	t.Helper()

	matcher, err := tickets.NewMatcher(nil, true)
	if err != nil {
		t.Fatal(err)
	}
	r, err := qanotes.New(qanotes.Options{
		Tickets: matcher,
		Logger:  logging.NopLogger(),
		Clock:   func() time.Time { return time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func renderFile(t *testing.T, r *qanotes.Renderer, path string) string {
	t.Helper()

	db, err := releasedb.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	page, err := r.Render(db)
	if err != nil {
		t.Fatalf("Render(%s) failed: %v", path, err)
	}
	return page
}

// TestSampleDatabaseEndToEnd renders the sample database from disk and checks
// the page top to bottom.
func TestSampleDatabaseEndToEnd(t *testing.T) {
	page := renderFile(t, newRenderer(t), testutil.WriteSampleDatabase(t))

	// Fragments in document order.
	ordered := []string{
		"<title>QA Notes for Widget v2.0.0</title>",
		`<code class="unimportant-long-sha1">0123456789abcdef</code>, built on 03/05/2024 at 02:07 PM UTC`,
		`<span class="data">arm64</span><span class="data">Xcode 15.2</span>`,
		"Changes in 2.0.0<",
		"Faster sync",
		"Rewrote the sync engine",
		"Ask customers to update.",
		`<a href="https://github.com/acme/widget/issues/12" target="_blank">widget#12</a>`,
		"Replaced polling with push.",
		"Sync two devices.",
		"Launch the app.",
		"Changes in 1.9.0<",
	}
	pos := 0
	for _, frag := range ordered {
		i := strings.Index(page[pos:], frag)
		if i < 0 {
			t.Fatalf("missing or out of order: %q", frag)
		}
		pos += i + len(frag)
	}

	if !strings.Contains(page, "BAD DEVELOPER NO SECRET WORK") {
		t.Error("note without tickets should carry the secret-work badge")
	}
	if !strings.Contains(page, `<div id="release-body-1" class="release-body" style="display:block">`) {
		t.Error("newest release should start expanded")
	}
}

// TestYAMLAndJSONAgree renders the same release from both encodings.
func TestYAMLAndJSONAgree(t *testing.T) {
	dir := t.TempDir()
	yamlPage := renderFile(t, newRenderer(t), testutil.WriteFile(t, dir, "db.yaml", testutil.SampleYAML))
	jsonPage := renderFile(t, newRenderer(t), testutil.WriteFile(t, dir, "db.json", `{
  "project_name": {"en-US": "Widget"},
  "releases": [{
    "name": "2.0.0",
    "commit": "0123456789abcdef",
    "notes": [{
      "employee-short-loc-hlist-rst": {"en-US": ["Rewrote the sync engine"]},
      "employee-testing-loc-rst": {"en-US": "Sync two devices."},
      "tickets": ["https://github.com/acme/widget/issues/12"]
    }]
  }]
}`))

	if yamlPage != jsonPage {
		t.Errorf("pages differ\nyaml:\n%s\njson:\n%s", yamlPage, jsonPage)
	}
}

// TestWatchRerendersChangedDatabase edits a watched database and expects the
// next render to pick the change up.
func TestWatchRerendersChangedDatabase(t *testing.T) {
	path := testutil.WriteSampleDatabase(t)
	r := newRenderer(t)

	w, err := watch.New([]string{path}, 50*time.Millisecond, logging.NopLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages := make(chan string, 4)
	go func() {
		_ = w.Run(ctx, func(string) {
			db, err := releasedb.Load(path)
			if err != nil {
				return
			}
			if page, err := r.Render(db); err == nil {
				pages <- page
			}
		})
	}()
	time.Sleep(50 * time.Millisecond)

	updated := strings.ReplaceAll(testutil.SampleJSON, "Faster sync", "Instant sync")
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case page := <-pages:
		if !strings.Contains(page, "Instant sync") {
			t.Error("re-rendered page does not reflect the edit")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no re-render after edit")
	}
}
