package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	var parts []string
	if a.views != nil {
		parts = append(parts, a.views.Route().Path, string(a.views.View()))
	}
	if a.session != nil {
		if s := a.session.Current(); s != nil {
			name := s.Email
			if p := a.currentProfile(); p != nil && p.DisplayName() != "" {
				name = p.DisplayName()
			}
			if s.Demo {
				name += " [demo]"
			}
			parts = append(parts, name)
		}
	}
	if m := a.mode(); m != "" {
		parts = append(parts, string(m))
	}

	s := strings.Join(parts, " ")
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	if a.notice != nil {
		if n := a.notice.Text(); n != "" {
			s = fmt.Sprintf("[%s] %s", n, s)
		}
	}
	return s
}

// Root greets the user, shows onboarding when it is due and runs the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to TellBrandz CLI (type 'help' for commands)")

	a.viewport.ScrollToTop()

	if st, err := a.onboarding.Load(ctx); err != nil {
		a.log.Warn(ctx, "loading onboarding state failed", "error", err)
	} else if st.ShouldShowOnboarding() {
		a.printOnboarding()
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
