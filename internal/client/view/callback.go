package view

import (
	"context"
	"errors"
	"net/url"

	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/logging"
)

var ErrMissingToken = errors.New("confirmation link is missing its token")

// Verifier is the part of the function invoker used by the auth callback.
type Verifier interface {
	VerifyEmail(ctx context.Context, r functions.VerifyEmailRequest) (functions.VerifyEmailResponse, error)
	WelcomeEmail(ctx context.Context, r functions.WelcomeEmailRequest) (functions.Ack, error)
}

// CallbackResult is what the callback page shows.
type CallbackResult struct {
	Email   string
	Message string
}

// HandleAuthCallback consumes the token and type query parameters of a
// confirmation link. On success a welcome email is requested; its failure
// is logged and otherwise ignored.
func HandleAuthCallback(ctx context.Context, v Verifier, query url.Values, log logging.Logger) (CallbackResult, error) {
	token, typ := query.Get("token"), query.Get("type")
	if token == "" {
		return CallbackResult{}, ErrMissingToken
	}
	if typ == "" {
		typ = "signup"
	}

	resp, err := v.VerifyEmail(ctx, functions.VerifyEmailRequest{Token: token, Type: typ})
	if err != nil {
		return CallbackResult{}, err
	}

	if resp.Email != "" {
		if _, err := v.WelcomeEmail(ctx, functions.WelcomeEmailRequest{Email: resp.Email, FullName: resp.FullName}); err != nil {
			log.Warn(ctx, "welcome email failed", "email", resp.Email, "error", err)
		}
	}

	return CallbackResult{
		Email:   resp.Email,
		Message: "Your email has been confirmed. You can now sign in.",
	}, nil
}
