package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/dataquality/internal/core"
)

var (
	errUnknownFormat = errors.New("unknown output format")
	errBadTypeFlag   = errors.New("invalid --type value, want COLUMN=TYPE")

	// errBelowThreshold marks a successful run whose overall score fell
	// under --fail-under. It exits with its own code so CI can tell it
	// apart from a broken input.
	errBelowThreshold = errors.New("quality below threshold")
)

const (
	exitError     = 1
	exitThreshold = 2
)

func exitCode(err error) int {
	if errors.Is(err, errBelowThreshold) {
		return exitThreshold
	}
	return exitError
}

// describe swaps known errors for their user message. The original error
// stays wrapped for errors.Is and for printError.
func describe(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return core.NewUserError(err)
}

// printError writes err to w. Known failures get a second line with their
// code and the suggested action; the technical cause goes to the debug log.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)

	var ue *core.UserError
	if errors.As(err, &ue) {
		fmt.Fprintf(w, "  %s\n", core.FormatUserError(ue.Technical))
		slog.Debug("command failed", "code", ue.User.Code, "error", ue.Technical)
	}
}
