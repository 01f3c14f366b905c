// Package workflows runs the submission forms: tell, brand claim, sign-up
// and sign-in. Each follows the same pattern: local validation, optional
// uploads, one function call, then either a local splice plus background
// re-fetch or a success notice. Errors never escape a submit; they land in
// the form's State and the fields stay populated for a retry.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/logging"
)

// TransportFailure is shown when a call could not reach the backend.
const TransportFailure = "We couldn't reach TellBrandz. Please check your connection and try again."

var ErrInFlight = errors.New("a submission is already in progress")

// ValidationError is raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Status is a snapshot of a form's submission state.
type Status struct {
	Loading bool
	Error   string
	Success string
}

// FormState guards a form against duplicate submission and holds its
// inline outcome.
type FormState struct {
	mu sync.Mutex
	st Status
}

// Begin starts a submission. It fails with ErrInFlight while a previous one
// is still running and clears the previous outcome otherwise.
func (f *FormState) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.st.Loading {
		return ErrInFlight
	}
	f.st = Status{Loading: true}
	return nil
}

func (f *FormState) Fail(msg string) {
	f.mu.Lock()
	f.st = Status{Error: msg}
	f.mu.Unlock()
}

func (f *FormState) Succeed(msg string) {
	f.mu.Lock()
	f.st = Status{Success: msg}
	f.mu.Unlock()
}

func (f *FormState) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

// userMessage maps err to the text shown inline. Unknown failures are
// logged and replaced with TransportFailure.
func userMessage(ctx context.Context, log logging.Logger, err error) string {
	var (
		verr *ValidationError
		rej  *functions.Rejection
		uerr *session.UserError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &rej):
		return rej.UserMessage()
	case errors.As(err, &uerr):
		return uerr.Message
	case errors.Is(err, functions.ErrInvalidRequest):
		return err.Error()
	default:
		log.Error(ctx, "submission failed", "error", err)
		return TransportFailure
	}
}
