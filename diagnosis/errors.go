package diagnosis

import (
	"fmt"
	"strings"
)

// maxHostLength is the longest valid DNS name
const maxHostLength = 253

// InvalidRequestError is returned when an operation is called with bad
// input. It is the only error an operation returns; probe failures are
// carried inside the results.
type InvalidRequestError struct {
	Param string
	Err   error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Err)
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

func invalid(param, format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Param: param, Err: fmt.Errorf(format, args...)}
}

// validateHost rejects values that could be read as command-line options
// by the path tracer, or that no resolver would accept
func validateHost(param, host string) error {
	switch {
	case host == "":
		return invalid(param, "must not be empty")
	case len(host) > maxHostLength:
		return invalid(param, "longer than %d characters", maxHostLength)
	case strings.HasPrefix(host, "-"):
		return invalid(param, "must not start with '-'")
	case strings.ContainsAny(host, " \t\r\n/\\"):
		return invalid(param, "contains forbidden characters")
	}
	return nil
}
