// Package action defines the result contract shared by every mutating
// operation: a success flag plus a human-readable message. The UI only
// branches on the flag and displays the message verbatim.
package action

import "fmt"

// Result is the outcome of a mutating action.
type Result struct {
	Success bool
	Message string
}

// OK builds a successful Result.
func OK(msg string) Result { return Result{Success: true, Message: msg} }

// Fail builds a failed Result.
func Fail(msg string) Result { return Result{Success: false, Message: msg} }

// Failf builds a failed Result with formatting.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
