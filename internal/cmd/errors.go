package cmd

import (
	"fmt"
	"io"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/fatih/color"
)

// Exit statuses of the qanotes binary.
const (
	ExitFailure  = 1 // usage, configuration and unclassified errors
	ExitInvalid  = 2 // invalid or missing input databases
	ExitRender   = 3 // databases that decode but cannot be rendered
	ExitInternal = 4 // broken renderer invariants
)

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case isInternal(err):
		return ExitInternal
	case qaerrors.IsSemanticError(err):
		return ExitInvalid
	case qaerrors.IsDomainError(err):
		return ExitRender
	default:
		return ExitFailure
	}
}

// PrintError writes err to w behind a colored "error:" label: yellow for
// input problems, red otherwise. Internal errors ask to be reported.
func PrintError(w io.Writer, err error) {
	label := color.New(color.FgRed, color.Bold)
	if qaerrors.GetSeverity(err) <= qaerrors.SeverityWarning {
		label = color.New(color.FgYellow, color.Bold)
	}
	if isInternal(err) {
		_, _ = fmt.Fprintf(w, "%s internal error, please report it: %v\n", label.Sprint("error:"), err)
		return
	}
	_, _ = fmt.Fprintln(w, label.Sprint("error:"), err)
}

func isInternal(err error) bool {
	return qaerrors.IsDomainError(err) && !qaerrors.IsUserFacing(err)
}
