package impex

import "strings"

// Result is the outcome of an import or export call that reached the console.
// A non-empty Error is a data-level failure reported by the console; in that
// case Resources is nil and must be ignored.
type Result struct {
	Error     string
	Resources [][]byte
}

func (r *Result) HasError() bool {
	return r != nil && r.Error != ""
}

// CommunicationError is returned when the console rejected the submission
// itself and rendered its own error markup.
type CommunicationError struct {
	Messages []string
}

func (e *CommunicationError) Error() string {
	return strings.Join(e.Messages, "\n")
}
