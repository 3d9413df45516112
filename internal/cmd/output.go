package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/qanotes/internal/util"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const defaultTermWidth = 80

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// writePage writes a rendered page atomically, creating the parent
// directory. Readers never observe a partially written page.
func writePage(path, page string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".qanotes-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.WriteString(page); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	success = true
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// printSummary prints one line per rendered page, styled when w is a terminal.
func printSummary(w io.Writer, results []renderResult) {
	width, styled := terminalWidth(w)
	for _, r := range results {
		if !styled {
			_, _ = fmt.Fprintf(w, "rendered %s -> %s (%s)\n", r.Input, r.Output, releaseCount(r.Releases))
			continue
		}
		// The destination gets whatever width the fixed parts leave over.
		fixed := lipgloss.Width(r.Input) + len(releaseCount(r.Releases)) + 10
		dest := util.TruncatePath(r.Output, max(width-fixed, 20))
		line := fmt.Sprintf("%s %s → %s %s",
			okStyle.Render("✓"),
			r.Input,
			pathStyle.Render(dest),
			dimStyle.Render("("+releaseCount(r.Releases)+")"),
		)
		_, _ = fmt.Fprintln(w, util.TruncateANSI(line, width))
	}
}

func releaseCount(n int) string {
	if n == 1 {
		return "1 release"
	}
	return fmt.Sprintf("%d releases", n)
}

// terminalWidth reports w's width and whether it is a terminal at all.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = defaultTermWidth
	}
	return width, true
}
