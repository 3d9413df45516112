package htmlbuf

import (
	"strings"
	"testing"
)

func TestBufferAssemblesSectionsInOrder(t *testing.T) {
	var b Buffer
	b.Body("<h2>")
	b.Head("<title>T</title>")
	b.JS("function f() {}")
	b.CSS("body { color: red; }")
	b.Bodyf("%s</h2>", "x")

	out := b.String()

	order := []string{"<!DOCTYPE html>", "<title>T</title>", "<style>", "body { color: red; }", "<script>", "function f() {}", "<body>", "<h2>x</h2>", "</html>"}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		if i < 0 {
			t.Fatalf("output missing %q:\n%s", s, out)
		}
		if i < last {
			t.Errorf("%q appears out of order", s)
		}
		last = i
	}
}

func TestBufferOmitsEmptyAssets(t *testing.T) {
	var b Buffer
	b.Body("hi")
	out := b.String()
	if strings.Contains(out, "<style>") || strings.Contains(out, "<script>") {
		t.Errorf("empty css/js should not emit tags:\n%s", out)
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<a href="x">&</a>`); got != "&lt;a href=&#34;x&#34;&gt;&amp;&lt;/a&gt;" {
		t.Errorf("Escape() = %q", got)
	}
}
