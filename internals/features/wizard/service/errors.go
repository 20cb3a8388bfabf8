package service

import "fmt"

// ValidationError rejects input at one step. Wizard state is kept and the user is sent
// back to Step.
type ValidationError struct {
	Step    int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Message)
	}
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// ReferenceError means a collected id no longer exists at commit time.
// The wizard state is cleared and the user lands on Landing.
// A commit returning an apperr not-found error is treated the same way.
type ReferenceError struct {
	What    string
	Landing string
	msg     string
}

func (e *ReferenceError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.What + " no longer exists"
}

func Missing(format string, args ...any) *ReferenceError {
	return &ReferenceError{What: fmt.Sprintf(format, args...)}
}
