package workflows

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/logging"
)

// MinPasswordLength is enforced before sign-up is attempted.
const MinPasswordLength = 6

// Accounts is the part of the session adapter used by the auth forms.
type Accounts interface {
	SignUp(ctx context.Context, email, password, fullName string) (session.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) error
}

type Resender interface {
	ResendVerification(ctx context.Context, r functions.ResendVerificationRequest) (functions.Ack, error)
}

// SignupForm is the account creation form. After a successful submit it
// switches to the verification-pending view; it never signs the user in.
type SignupForm struct {
	Email    string
	Password string
	FullName string

	State FormState
	// Pending is set once the confirmation email has been sent.
	Pending        bool
	PendingMessage string
}

func (f *SignupForm) Validate() error {
	switch {
	case strings.TrimSpace(f.FullName) == "":
		return invalid("fullName", "Please enter your full name.")
	case strings.TrimSpace(f.Email) == "":
		return invalid("email", "Please enter your email.")
	case f.Password == "":
		return invalid("password", "Please choose a password.")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return invalid("email", "Please enter a valid email address.")
	}
	if len(f.Password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	return nil
}

// SignInForm is the password sign-in form.
type SignInForm struct {
	Email    string
	Password string

	State FormState
}

func (f *SignInForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return invalid("email", "Please enter your email and password.")
	}
	return nil
}

// AuthWorkflow drives the sign-up, sign-in and resend actions.
type AuthWorkflow struct {
	accounts Accounts
	resender Resender
	cooldown *Cooldown
	log      logging.Logger
}

func NewAuthWorkflow(accounts Accounts, resender Resender, log logging.Logger) *AuthWorkflow {
	return &AuthWorkflow{
		accounts: accounts,
		resender: resender,
		cooldown: NewCooldown(ResendCooldown),
		log:      log.With("component", "auth-form"),
	}
}

func pendingMessage(email string) string {
	return fmt.Sprintf("We've sent a confirmation link to %s. Please check your email to activate your account.", email)
}

// SignUp submits f. The fields sent are exactly email, password and full
// name; the password is cleared only on success.
func (w *AuthWorkflow) SignUp(ctx context.Context, f *SignupForm) error {
	if err := f.State.Begin(); err != nil {
		return err
	}

	err := f.Validate()
	var res session.SignUpResult
	if err == nil {
		res, err = w.accounts.SignUp(ctx, strings.TrimSpace(f.Email), f.Password, strings.TrimSpace(f.FullName))
	}
	if err != nil {
		f.State.Fail(userMessage(ctx, w.log, err))
		return err
	}

	if res.NeedsConfirmation {
		f.Pending = true
		f.PendingMessage = pendingMessage(strings.TrimSpace(f.Email))
	}
	f.Password = ""
	f.State.Succeed(res.Message)
	return nil
}

// SignIn submits f. The session itself arrives through the adapter's
// event stream.
func (w *AuthWorkflow) SignIn(ctx context.Context, f *SignInForm) error {
	if err := f.State.Begin(); err != nil {
		return err
	}

	err := f.Validate()
	if err == nil {
		err = w.accounts.SignIn(ctx, strings.TrimSpace(f.Email), f.Password)
	}
	if err != nil {
		f.State.Fail(userMessage(ctx, w.log, err))
		return err
	}

	f.Password = ""
	f.State.Succeed("Signed in.")
	return nil
}

// CooldownError reports how long to wait before resending.
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Please wait %ds before requesting another email.", e.Remaining)
}

// Resend asks for another confirmation email, at most once per
// ResendCooldown.
func (w *AuthWorkflow) Resend(ctx context.Context, email string) error {
	left, ok := w.cooldown.Acquire()
	if !ok {
		return &CooldownError{Remaining: int(left.Seconds() + 0.999)}
	}

	if _, err := w.resender.ResendVerification(ctx, functions.ResendVerificationRequest{Email: email}); err != nil {
		w.cooldown.Release()
		return &session.UserError{Message: userMessage(ctx, w.log, err), Err: err}
	}
	return nil
}

// ResendRemaining is the cooldown left before Resend is allowed.
func (w *AuthWorkflow) ResendRemaining() int {
	return int(w.cooldown.Remaining().Seconds() + 0.999)
}
