package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/client/view"
	"github.com/tellbrandz/tbz/internal/client/workflows"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// formError prints the inline message a form was left with. Validation and
// backend failures are shown to the user rather than returned.
func (a *App) formError(st *workflows.FormState, err error) error {
	if errors.Is(err, workflows.ErrInFlight) {
		return err
	}
	if msg := st.Status().Error; msg != "" {
		fmt.Fprintln(a.out, msg)
		return nil
	}
	return err
}

// Signup creates an account. The user stays signed out until the emailed
// link is followed.
func (a *App) Signup(ctx context.Context, _ []string) error {
	_ = a.views.SetView(view.ViewAuth)

	form := &workflows.SignupForm{}
	var err error
	if form.FullName, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if form.Password, err = getPassword(a.out); err != nil {
		return err
	}

	if err := a.auth.SignUp(ctx, form); err != nil {
		return a.formError(&form.State, err)
	}
	if form.Pending {
		fmt.Fprintln(a.out, form.PendingMessage)
		fmt.Fprintln(a.out, "Didn't get it? Type 'resend "+strings.TrimSpace(form.Email)+"'.")
		return nil
	}
	fmt.Fprintln(a.out, form.State.Status().Success)
	return nil
}

// Resend asks for another confirmation email.
func (a *App) Resend(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	var cooldown *workflows.CooldownError
	var userErr *session.UserError
	switch err := a.auth.Resend(ctx, email); {
	case errors.As(err, &cooldown):
		fmt.Fprintln(a.out, cooldown.Error())
	case errors.As(err, &userErr):
		fmt.Fprintln(a.out, userErr.Message)
	case err != nil:
		return err
	default:
		fmt.Fprintf(a.out, "A new confirmation link is on its way to %s.\n", email)
	}
	return nil
}

// Verify completes email confirmation from the link in the email.
func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: verify <confirmation link>")
		return errUsage
	}
	r := view.Resolve(args[0])
	if r.Page != view.PageAuthCallback {
		fmt.Fprintln(a.out, "That doesn't look like a confirmation link.")
		return nil
	}
	return a.Go(ctx, args)
}

func (a *App) completeCallback(ctx context.Context, r view.Route) error {
	res, err := view.HandleAuthCallback(ctx, a.fns, r.Query, a.log)
	if errors.Is(err, view.ErrMissingToken) {
		fmt.Fprintln(a.out, "Invalid confirmation link.")
		return nil
	}
	if err != nil {
		fmt.Fprintln(a.out, "We couldn't verify your email. The link may have expired; try 'resend'.")
		a.log.Warn(ctx, "email verification failed", "error", err)
		return nil
	}

	fmt.Fprintln(a.out, res.Message)
	if _, err := a.views.Navigate("/auth"); err != nil {
		return err
	}
	return a.views.SetView(view.ViewAuth)
}

// Login signs in with email and password. The session itself arrives
// through the adapter's event stream.
func (a *App) Login(ctx context.Context, _ []string) error {
	_ = a.views.SetView(view.ViewAuth)

	form := &workflows.SignInForm{}
	var err error
	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if form.Password, err = getPassword(a.out); err != nil {
		return err
	}

	if err := a.auth.SignIn(ctx, form); err != nil {
		return a.formError(&form.State, err)
	}
	fmt.Fprintln(a.out, form.State.Status().Success)
	return nil
}

// Demo starts a local demo session with an optional role.
func (a *App) Demo(ctx context.Context, args []string) error {
	role := session.RoleUser
	if len(args) > 0 {
		role = args[0]
	}
	switch role {
	case session.RoleUser, session.RoleBrand, session.RoleAdmin:
	default:
		fmt.Fprintln(a.out, "Usage: demo [user|brand|admin]")
		return errUsage
	}

	s, err := a.session.StartDemo(ctx, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Demo session started as %s (%s).\n", s.Email, s.Metadata.Role)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not signed in.")
		return nil
	}
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) currentProfile() *models.Profile {
	if a.profile == nil {
		return nil
	}
	return a.profile.Profile()
}

// Whoami prints the current session and profile.
func (a *App) Whoami(_ context.Context, _ []string) error {
	s := a.session.Current()
	if s == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "user:     %s\n", s.UserID)
	fmt.Fprintf(a.out, "email:    %s (confirmed: %t)\n", s.Email, s.EmailConfirmed)
	if s.Metadata.Role != "" {
		fmt.Fprintf(a.out, "role:     %s\n", s.Metadata.Role)
	}
	if s.Metadata.BrandID != "" {
		fmt.Fprintf(a.out, "brand:    %s\n", s.Metadata.BrandID)
	}
	if s.Demo {
		fmt.Fprintln(a.out, "session:  demo")
	}

	if a.profile != nil && a.profile.Loading() {
		fmt.Fprintln(a.out, "profile:  loading...")
		return nil
	}
	if p := a.currentProfile(); p != nil {
		fmt.Fprintf(a.out, "name:     %s\n", p.DisplayName())
		if p.AvatarURL != "" {
			fmt.Fprintf(a.out, "avatar:   %s\n", p.AvatarURL)
		}
	}
	return nil
}

// Photo uploads a new profile photo.
func (a *App) Photo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: photo <path>")
		return errUsage
	}
	if err := a.views.SetView(view.ViewProfile); err != nil {
		fmt.Fprintln(a.out, "Please sign in first.")
		return nil
	}

	f, err := uploads.FromPath(args[0])
	if err != nil {
		return err
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		fmt.Fprintln(a.out, "Please choose an image.")
		return nil
	}

	url, err := a.profile.UploadPhoto(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile photo updated: %s\n", url)
	return nil
}
