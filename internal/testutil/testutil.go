// Package testutil provides testing utilities for qanotes tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleJSON is a small release database with two releases, a secret note,
// a technical disclosure, and a customer-service override.
const SampleJSON = `{
  "project_name": {"en-US": "Widget"},
  "build-uniqueness-list-rst": ["Xcode 15.2", "arm64"],
  "releases": [
    {
      "name": "2.0.0",
      "after": ["1.9.0"],
      "commit": "0123456789abcdef",
      "notes": [
        {
          "employee-short-loc-hlist-rst": {"en-US": ["Rewrote the sync engine"]},
          "customer-short-loc-hlist-rst": {"en-US": ["Faster sync"]},
          "employee-technical-loc-rst": {"en-US": "Replaced polling with push."},
          "employee-testing-loc-rst": {"en-US": "Sync two devices."},
          "tickets": ["https://github.com/acme/widget/issues/12"]
        },
        {
          "employee-short-loc-hlist-rst": {"en-US": [{"Fixed crash": ["on launch"]}]},
          "cs-technical-loc-rst": {"en-US": "Ask customers to update."},
          "employee-testing-loc-rst": {"en-US": "Launch the app."},
          "tickets": [null]
        }
      ]
    },
    {
      "name": "1.9.0",
      "after": [],
      "commit": "fedcba9876543210",
      "notes": []
    }
  ]
}
`

// SampleYAML is SampleJSON's first release expressed in YAML.
const SampleYAML = `project_name:
  en-US: Widget
releases:
  - name: 2.0.0
    commit: 0123456789abcdef
    notes:
      - employee-short-loc-hlist-rst:
          en-US:
            - Rewrote the sync engine
        employee-testing-loc-rst:
          en-US: Sync two devices.
        tickets:
          - https://github.com/acme/widget/issues/12
`

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", name, err)
	}
	return path
}

// WriteSampleDatabase writes SampleJSON into a fresh temp dir and returns its path.
func WriteSampleDatabase(t *testing.T) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "releases.json", SampleJSON)
}

// ReadFile returns the contents of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Chdir changes the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(original) })
}
