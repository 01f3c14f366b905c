// Package functions models the backend's serverless functions as closed
// request/response types. Every request validates itself before it leaves
// the client, and every response is checked for the shape its caller relies
// on, so a drifting function surfaces as ErrMalformedResponse instead of
// half-populated structs.
package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tellbrandz/tbz/internal/client/backend"
)

// Function names.
const (
	FnSignup             = "signup-with-verification"
	FnVerifyEmail        = "verify-email"
	FnResendVerification = "resend-verification"
	FnSearchBrands       = "search-brands"
	FnFetchBrandLogo     = "fetch-brand-logo"
	FnSubmitTell         = "submit-tell"
	FnSubmitBrandClaim   = "submit-brand-claim"
	FnWelcomeEmail       = "send-welcome-email"
	FnBrandAwards        = "brand-awards"
	FnTrendingBrands     = "trending-brands"
	FnResolutionWorkflow = "resolution-workflow"
	FnVerifyPayment      = "verify-payment"
)

// GenericFailure is shown when a function rejects a request without saying why.
const GenericFailure = "Something went wrong. Please try again."

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMalformedResponse = errors.New("malformed function response")
)

// Request is implemented by every function payload.
type Request interface {
	FunctionName() string
	Validate() error
}

// Response is implemented by every function result.
type Response interface {
	check() error
}

// Rejection is an application-level refusal: the function ran and answered
// success:false (or a 4xx with a message).
type Rejection struct {
	Function string
	Message  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", r.Function, r.UserMessage())
}

// UserMessage is safe to show to the user.
func (r *Rejection) UserMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return GenericFailure
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Invoker calls functions through a backend client.
type Invoker struct {
	client backend.Client
}

func NewInvoker(client backend.Client) *Invoker {
	return &Invoker{client: client}
}

// Call validates req, invokes its function and decodes the result into R.
//
// Errors: ErrInvalidRequest before any network call; backend transport
// sentinels (ErrUnavailable, ErrUnauthorized) unchanged; *Rejection for
// application-level refusals; ErrMalformedResponse when the body does not
// have the expected shape.
func Call[R Response](ctx context.Context, inv *Invoker, req Request) (R, error) {
	var zero R

	if err := req.Validate(); err != nil {
		return zero, err
	}

	name := req.FunctionName()
	raw, err := inv.client.Invoke(ctx, name, req)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError &&
			!errors.Is(err, backend.ErrUnauthorized) {
			return zero, &Rejection{Function: name, Message: apiErr.Message}
		}
		return zero, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return zero, &Rejection{Function: name, Message: msg}
	}

	var out R
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	if err := out.check(); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	return out, nil
}

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	return nil
}

// withAction marshals v as an object with an added "action" discriminator.
// Callers pass a method-less alias of their type to avoid recursion.
func withAction(action string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["action"] = action
	return json.Marshal(m)
}
