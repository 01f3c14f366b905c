package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/view"
)

var errUsage = errors.New("wrong arguments, see help")

// Go navigates to a path. Following a confirmation link (/auth/callback
// with a token) completes email verification.
func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: go <path>")
		return errUsage
	}

	r, err := a.views.Navigate(args[0])
	if errors.Is(err, view.ErrSignInRequired) {
		fmt.Fprintln(a.out, "Please sign in to open that page.")
		return nil
	}
	if err != nil {
		return err
	}

	if r.Page == view.PageAuthCallback {
		return a.completeCallback(ctx, r)
	}
	return nil
}

// View switches the sub-view. Without arguments it prints the current one.
func (a *App) View(_ context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, a.views.View())
		return nil
	}

	v, err := view.ParseViewState(args[0])
	if err != nil {
		return err
	}
	switch err := a.views.SetView(v); {
	case errors.Is(err, view.ErrSignInRequired):
		fmt.Fprintln(a.out, "Please sign in first.")
		return nil
	case errors.Is(err, view.ErrForbidden):
		fmt.Fprintln(a.out, "You don't have access to that view.")
		return nil
	case err != nil:
		return err
	}
	return nil
}

func (a *App) printOnboarding() {
	fmt.Fprintln(a.out, "Welcome to TellBrandz!")
	fmt.Fprintf(a.out, "  - Share a %s when a brand delights you, or a %s when it lets you down.\n", models.BrandBeat, models.BrandBlast)
	fmt.Fprintln(a.out, "  - Browse brands, compare up to three, and keep favourites.")
	fmt.Fprintln(a.out, "  - Type 'onboarding done' to hide this message.")
}

// Onboarding shows the onboarding state, or changes it with "done" or
// "reset".
func (a *App) Onboarding(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "done":
			if _, err := a.onboarding.CompleteOnboarding(ctx); err != nil {
				return err
			}
		case "reset":
			if err := a.onboarding.Reset(ctx); err != nil {
				return err
			}
		default:
			fmt.Fprintln(a.out, "Usage: onboarding [done|reset]")
			return errUsage
		}
	}

	st, err := a.onboarding.Load(ctx)
	if err != nil {
		return err
	}
	if st.ShouldShowOnboarding() {
		a.printOnboarding()
	}
	fmt.Fprintf(a.out, "onboarding completed: %t, first tell: %t, tutorial viewed: %t\n",
		st.HasCompletedOnboarding, st.HasCreatedFirstTell, st.HasViewedTutorial)
	return nil
}

// Tutorial walks through sharing a first tell and marks it viewed.
func (a *App) Tutorial(ctx context.Context, _ []string) error {
	st, err := a.onboarding.Load(ctx)
	if err != nil {
		return err
	}
	if !st.ShouldShowTutorial() {
		fmt.Fprintln(a.out, "Nothing new here. Finish onboarding first or reset it with 'onboarding reset'.")
		return nil
	}

	fmt.Fprintln(a.out, "1. Type 'tell' and pick BrandBeat or BrandBlast.")
	fmt.Fprintln(a.out, "2. Name the brand, add a title and describe what happened.")
	fmt.Fprintln(a.out, "3. Optionally attach one image and one video.")
	if !st.HasCreatedFirstTell {
		fmt.Fprintln(a.out, "You haven't shared a tell yet. Try it now!")
	}

	_, err = a.onboarding.MarkTutorialViewed(ctx)
	return err
}
