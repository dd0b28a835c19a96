package normalizr

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// CodeInvalidType reports a normalize input that is not an object or array.
	CodeInvalidType = "invalid_type"
	// CodeInvalidValue reports an entity input rejected by its validate hook.
	CodeInvalidValue = "invalid_value"
	// CodeMissingID reports an entity whose id could not be extracted.
	CodeMissingID = "missing_id"
	// CodeInvalidSchema reports a malformed schema definition discovered during
	// traversal, such as a multi-element sequence shorthand.
	CodeInvalidSchema = "invalid_schema"
	// CodeCircularReference reports a cycle hit while denormalizing into an
	// immutable Record, which cannot be patched in place.
	CodeCircularReference = "circular_reference"
	// CodeParseError wraps failures from input decoding or caller hooks.
	CodeParseError = "parse_error"
)

// Issue represents a single traversal error.
type Issue struct {
	Path    string // Best-effort location: the field or key being visited.
	Code    string // One of the codes listed above.
	Message string
	Hint    string         // Optional remediation hint.
	Cause   error          // Optional underlying error.
	Params  map[string]any // Structured parameters, e.g. {"entity":"users","id":"1"}.
}

// Issues is a collection of traversal errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path != "" {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		} else {
			b.WriteString(it.Code)
		}
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
