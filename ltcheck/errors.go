package ltcheck

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput signals a request carrying neither text nor data.
	ErrMissingInput = errors.New("ltcheck: missing either text or data field")

	// ErrNoRequests signals an attempt to check or join zero fragments.
	// There is no identity result with a well-defined text.
	ErrNoRequests = errors.New("ltcheck: no requests; cannot join zero results")
)

// overloadedBody is the exact body the server returns when it sheds load.
// It is the only condition eligible for automatic retry.
const overloadedBody = "Error: Server overloaded, please try again later"

// RequestError is a non-2xx reply from the server, body included verbatim.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ltcheck: server returned %d: %s", e.StatusCode, e.Body)
}

// IsOverloaded reports whether err is the server's transient overload
// condition.  Used as the default retry predicate.
func IsOverloaded(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && strings.TrimSpace(re.Body) == overloadedBody
}
