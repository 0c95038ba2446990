package commands

import (
	"fmt"
	"io"

	"labposts/internal/exitcode"
	"labposts/internal/service"
)

// reportFailure prints a failed result and returns its exit code.
func reportFailure[T any](errOut io.Writer, res service.Result[T]) int {
	fmt.Fprintf(errOut, "error: %s\n", res.Message)
	return exitCodeFor(res.Kind, res.Message)
}

// exitCodeFor maps a failure to an exit code. Refusals and unknown ids are
// the user's problem; everything else is the backend's.
func exitCodeFor(kind service.ErrorKind, message string) int {
	switch kind {
	case service.KindValidation, service.KindBusy:
		return exitcode.UserError
	case service.KindRemote:
		if message == service.MsgNotFound {
			return exitcode.UserError
		}
	}
	return exitcode.BackendError
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optString) String() string { return o.value }
func (o *optString) Type() string   { return "string" }

// or returns the flag value if given, otherwise fallback.
func (o *optString) or(fallback string) string {
	if o.set {
		return o.value
	}
	return fallback
}
