package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/Iron-Ham/qanotes/internal/logging"
	"github.com/Iron-Ham/qanotes/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setupTestEnvironment points config lookup and the working directory at
// fresh temp directories and returns the config directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	testutil.Chdir(t, t.TempDir())
	return filepath.Join(xdg, "qanotes")
}

// executeCommand runs the root command with args and returns captured output.
// Global viper and flag state is reset first, as each run of the binary
// starts from scratch.
func executeCommand(args ...string) (string, error) {
	return executeCommandContext(context.Background(), args...)
}

// executeCommandContext is executeCommand with a context that commands such
// as render --watch observe.
func executeCommandContext(ctx context.Context, args ...string) (string, error) {
	viper.Reset()
	cfgFile, configErr = "", nil
	renderOutput, renderOutDir = "", ""
	renderMaxReleases = 0
	renderWatch, renderStdout = false, false
	// Subcommands keep the context of their first run unless replaced.
	setContext(rootCmd, ctx)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func setContext(c *cobra.Command, ctx context.Context) {
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		setContext(sub, ctx)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "qanotes" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "qanotes")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range []string{"render", "config", "version"} {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestRenderWritesPageNextToDatabase(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)

	output, err := executeCommand("render", db)
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}

	pagePath := strings.TrimSuffix(db, ".json") + ".html"
	page := testutil.ReadFile(t, pagePath)
	if !strings.Contains(page, "<title>QA Notes for Widget v2.0.0</title>") {
		t.Errorf("page missing title:\n%s", page)
	}
	if !strings.Contains(page, "built on") {
		t.Error("page should carry the build time by default")
	}

	want := "rendered " + db + " -> " + pagePath + " (2 releases)"
	if !strings.Contains(output, want) {
		t.Errorf("output = %q, want it to contain %q", output, want)
	}

	// No temp files left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(db))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".qanotes-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestRenderOutputFlag(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)
	dest := filepath.Join(t.TempDir(), "nested", "qa.html")

	if output, err := executeCommand("render", "-o", dest, db); err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}
	if page := testutil.ReadFile(t, dest); !strings.Contains(page, "2.0.0") {
		t.Errorf("page at %s missing release", dest)
	}
}

func TestRenderStdout(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("QANOTES_RENDER_TIMESTAMP", "false")
	db := testutil.WriteSampleDatabase(t)

	output, err := executeCommand("render", "--stdout", db)
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "<h2>QA Notes for Widget v2.0.0</h2>") {
		t.Errorf("stdout missing page:\n%s", output)
	}
	if strings.Contains(output, "built on") {
		t.Error("QANOTES_RENDER_TIMESTAMP=false should omit the build time")
	}
	if strings.Contains(output, "rendered ") {
		t.Error("summary line mixed into page output")
	}

	// Reproducible without the timestamp.
	again, err := executeCommand("render", "--stdout", db)
	if err != nil {
		t.Fatal(err)
	}
	if again != output {
		t.Error("rendering twice without a timestamp produced different pages")
	}
}

func TestRenderSeveralDatabases(t *testing.T) {
	setupTestEnvironment(t)
	dir := t.TempDir()
	jsonDB := testutil.WriteFile(t, dir, "widget.json", testutil.SampleJSON)
	yamlDB := testutil.WriteFile(t, dir, "gadget.yaml", testutil.SampleYAML)
	outDir := filepath.Join(t.TempDir(), "site")

	output, err := executeCommand("render", "--out-dir", outDir, jsonDB, yamlDB)
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}

	for _, name := range []string{"widget.html", "gadget.html"} {
		page := testutil.ReadFile(t, filepath.Join(outDir, name))
		if !strings.Contains(page, "QA Notes for Widget v2.0.0") {
			t.Errorf("%s missing title", name)
		}
	}

	// Summary lines follow input order.
	if strings.Index(output, "widget.json") > strings.Index(output, "gadget.yaml") {
		t.Errorf("summary out of input order:\n%s", output)
	}
	if !strings.Contains(output, "(1 release)") {
		t.Errorf("YAML database should report one release:\n%s", output)
	}
}

func TestRenderMaxReleasesFlag(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)

	output, err := executeCommand("render", "--max-releases", "1", db)
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "(1 release)") {
		t.Errorf("output = %q, want one release", output)
	}
}

func TestRenderFlagErrors(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no database", []string{"render"}, "requires at least 1 arg"},
		{"output with several inputs", []string{"render", "-o", "x.html", db, db}, "single database"},
		{"stdout with several inputs", []string{"render", "--stdout", db, db}, "single database"},
		{"output and stdout", []string{"render", "--stdout", "-o", "x.html", db}, "mutually exclusive"},
		{"watch and stdout", []string{"render", "--stdout", "--watch", db}, "--watch"},
		{"negative max releases", []string{"render", "--max-releases", "-2", db}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRenderMissingDatabase(t *testing.T) {
	setupTestEnvironment(t)

	_, err := executeCommand("render", filepath.Join(t.TempDir(), "missing.json"))
	var notFound *qaerrors.NotFoundError
	if !qaerrors.As(err, &notFound) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if got := ExitCode(err); got != ExitInvalid {
		t.Errorf("ExitCode() = %d, want %d", got, ExitInvalid)
	}
}

func TestRenderRejectsCollidingOutputs(t *testing.T) {
	setupTestEnvironment(t)
	root := t.TempDir()
	alpha := testutil.WriteFile(t, root, "alpha/releases.json", testutil.SampleJSON)
	beta := testutil.WriteFile(t, root, "beta/releases.json", strings.ReplaceAll(testutil.SampleJSON, "Widget", "Gadget"))
	site := filepath.Join(root, "site")

	assertRejected := func(t *testing.T, err error, want ...string) {
		t.Helper()
		if err == nil {
			t.Fatal("expected error")
		}
		for _, w := range want {
			if !strings.Contains(err.Error(), w) {
				t.Errorf("error %q should mention %s", err, w)
			}
		}
		if got := ExitCode(err); got != ExitInvalid {
			t.Errorf("ExitCode() = %d, want %d", got, ExitInvalid)
		}
		if _, statErr := os.Stat(filepath.Join(site, "releases.html")); !os.IsNotExist(statErr) {
			t.Error("no page should be written when outputs collide")
		}
	}

	t.Run("out-dir flag", func(t *testing.T) {
		_, err := executeCommand("render", "--out-dir", site, alpha, beta)
		assertRejected(t, err, alpha, beta)
	})

	t.Run("output.dir setting", func(t *testing.T) {
		t.Setenv("QANOTES_OUTPUT_DIR", site)
		_, err := executeCommand("render", alpha, beta)
		assertRejected(t, err, alpha, beta)
	})

	t.Run("same database twice", func(t *testing.T) {
		_, err := executeCommand("render", "--out-dir", site, alpha, alpha)
		assertRejected(t, err, alpha)
	})

	t.Run("page replacing its database", func(t *testing.T) {
		t.Setenv("QANOTES_OUTPUT_SUFFIX", ".json")
		_, err := executeCommand("render", alpha)
		assertRejected(t, err, "overwrite its database")
		if page := testutil.ReadFile(t, alpha); page != testutil.SampleJSON {
			t.Error("database was modified")
		}
	})

	t.Run("distinct names render", func(t *testing.T) {
		gamma := testutil.WriteFile(t, root, "beta/gamma.json", testutil.SampleJSON)
		if output, err := executeCommand("render", "--out-dir", site, alpha, gamma); err != nil {
			t.Fatalf("render failed: %v\n%s", err, output)
		}
		for _, name := range []string{"releases.html", "gamma.html"} {
			if _, err := os.Stat(filepath.Join(site, name)); err != nil {
				t.Errorf("missing %s: %v", name, err)
			}
		}
	})
}

func TestRenderWatchStartsAfterFailedRender(t *testing.T) {
	setupTestEnvironment(t)
	dir := t.TempDir()
	db := testutil.WriteFile(t, dir, "releases.json", "{")
	page := filepath.Join(dir, "releases.html")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		output string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := executeCommandContext(ctx, "render", "--watch", db)
		done <- result{output, err}
	}()

	// Fix the database until the watcher picks the change up.
	deadline := time.Now().Add(5 * time.Second)
	for {
		time.Sleep(300 * time.Millisecond)
		if _, err := os.Stat(page); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("watch mode never rendered the fixed database")
		}
		if err := os.WriteFile(db, []byte(testutil.SampleJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cancel()
	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render --watch did not stop after cancellation")
	}
	if res.err != nil {
		t.Fatalf("render --watch returned %v", res.err)
	}

	for _, want := range []string{"error:", "database error", "Watching for changes", "rendered " + db} {
		if !strings.Contains(res.output, want) {
			t.Errorf("output missing %q:\n%s", want, res.output)
		}
	}
	if !strings.Contains(testutil.ReadFile(t, page), "QA Notes for Widget") {
		t.Error("page does not hold the fixed database")
	}
}

const unknownTicketDB = `{
  "project_name": {"en-US": "Widget"},
  "releases": [{
    "name": "1.0",
    "commit": "abc",
    "notes": [{
      "employee-short-loc-hlist-rst": {"en-US": ["Fix"]},
      "employee-testing-loc-rst": {"en-US": "Try it."},
      "tickets": ["https://tracker.example.com/ticket/77"]
    }]
  }]
}`

func TestRenderTicketRules(t *testing.T) {
	setupTestEnvironment(t)
	dir := t.TempDir()
	db := testutil.WriteFile(t, dir, "db.json", unknownTicketDB)

	t.Run("strict rejects unknown URL", func(t *testing.T) {
		_, err := executeCommand("render", db)
		if !qaerrors.Is(err, qaerrors.ErrUnknownTicketFormat) {
			t.Fatalf("error = %v, want ErrUnknownTicketFormat", err)
		}
		if !strings.Contains(err.Error(), db) {
			t.Errorf("error %q should name the database", err)
		}
	})

	t.Run("configured rule", func(t *testing.T) {
		cfg := testutil.WriteFile(t, dir, "rules.yaml", `tickets:
  rules:
    - pattern: "https://tracker.example.com/ticket/*"
      display: "TKT-{last}"
`)
		if output, err := executeCommand("--config", cfg, "render", db); err != nil {
			t.Fatalf("render failed: %v\n%s", err, output)
		}
		page := testutil.ReadFile(t, filepath.Join(dir, "db.html"))
		if !strings.Contains(page, ">TKT-77</a>") {
			t.Errorf("page missing configured badge:\n%s", page)
		}
	})

	t.Run("lenient shows URL", func(t *testing.T) {
		t.Setenv("QANOTES_TICKETS_STRICT", "false")
		if output, err := executeCommand("render", "--stdout", db); err != nil {
			t.Fatalf("render failed: %v\n%s", err, output)
		} else if !strings.Contains(output, ">https://tracker.example.com/ticket/77</a>") {
			t.Errorf("page should show the raw URL:\n%s", output)
		}
	})
}

func TestRenderWritesLogFile(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)
	logDir := t.TempDir()

	t.Setenv("QANOTES_LOGGING_ENABLED", "true")
	t.Setenv("QANOTES_LOGGING_DIR", logDir)

	if output, err := executeCommand("render", db); err != nil {
		t.Fatalf("render failed: %v\n%s", err, output)
	}

	logs := testutil.ReadFile(t, filepath.Join(logDir, logging.LogFileName))
	if !strings.Contains(logs, `"msg":"rendered database"`) {
		t.Errorf("log missing render entry:\n%s", logs)
	}
	if !strings.Contains(logs, db) {
		t.Errorf("log entry should carry the database path:\n%s", logs)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	setupTestEnvironment(t)
	db := testutil.WriteSampleDatabase(t)

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := executeCommand("--config", filepath.Join(t.TempDir(), "nope.yaml"), "render", db)
		if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
			t.Errorf("error = %v, want config read failure", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("QANOTES_LOGGING_LEVEL", "loud")
		_, err := executeCommand("render", db)
		if err == nil || !strings.Contains(err.Error(), "logging.level") {
			t.Errorf("error = %v, want logging.level validation failure", err)
		}
	})
}

func TestConfigInitAndPath(t *testing.T) {
	configDir := setupTestEnvironment(t)
	configFile := filepath.Join(configDir, "config.yaml")

	output, err := executeCommand("config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "Default path: "+configFile+" (not created)") {
		t.Errorf("config path before init:\n%s", output)
	}

	output, err = executeCommand("config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, "Created config file at "+configFile) {
		t.Errorf("config init output:\n%s", output)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if _, err := executeCommand("config", "init"); err == nil {
		t.Error("second config init should fail")
	}

	output, err = executeCommand("config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "Active config: "+configFile) {
		t.Errorf("config path after init:\n%s", output)
	}

	// The generated file is valid configuration.
	output, err = executeCommand("config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(output, "max_releases: 5") {
		t.Errorf("config show:\n%s", output)
	}
}

func TestConfigSet(t *testing.T) {
	configDir := setupTestEnvironment(t)

	output, err := executeCommand("config", "set", "render.max_releases", "7")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(output, "Set render.max_releases = 7") {
		t.Errorf("config set output:\n%s", output)
	}

	saved := testutil.ReadFile(t, filepath.Join(configDir, "config.yaml"))
	if !strings.Contains(saved, "max_releases: 7") {
		t.Errorf("saved config:\n%s", saved)
	}

	output, err = executeCommand("config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "max_releases: 7") {
		t.Errorf("config show after set:\n%s", output)
	}

	tests := []struct {
		name       string
		key, value string
		want       string
	}{
		{"unknown key", "render.colour", "red", "unknown configuration key"},
		{"not an int", "render.max_releases", "many", "expected integer"},
		{"not a bool", "render.timestamp", "maybe", "expected true or false"},
		{"fails validation", "logging.level", "loud", "logging.level"},
		{"zero releases", "render.max_releases", "0", "must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand("config", "set", tt.key, tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := executeCommand("version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(output, "qanotes "+Version) {
		t.Errorf("version output = %q", output)
	}
}
