package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/client/view"
	"github.com/tellbrandz/tbz/internal/client/workflows"
)

func printTells(a *App, tells []models.Tell) {
	if len(tells) == 0 {
		fmt.Fprintln(a.out, "No tells yet.")
		return
	}
	for _, t := range tells {
		fmt.Fprintf(a.out, "%s  %-10s  %-20s  %s\n", t.CreatedAt.Format(time.DateOnly), t.Type, t.BrandName, t.Title)
	}
}

// Tell writes and submits a BrandBeat or BrandBlast. After a failure the
// previous answers are offered as defaults and files that already uploaded
// are reused unless new ones are attached.
func (a *App) Tell(ctx context.Context, args []string) error {
	if err := a.views.SetView(view.ViewTellForm); err != nil {
		fmt.Fprintln(a.out, "Please sign in to share a tell.")
		return nil
	}

	f := a.tellForm
	if len(args) > 0 {
		f.Type = models.TellType(strings.ToLower(args[0]))
	}
	if f.Country == "" {
		c, err := a.preferences.Country(ctx)
		if err != nil {
			a.log.Warn(ctx, "reading selected country failed", "error", err)
		}
		f.Country = c
	}

	typ, err := GetTextOrDefault(a.reader, "Type (brandbeat or brandblast)", string(f.Type), a.out)
	if err != nil {
		return err
	}
	f.Type = models.TellType(strings.ToLower(typ))
	if f.BrandName, err = GetTextOrDefault(a.reader, "Brand", f.BrandName, a.out); err != nil {
		return err
	}
	if f.Title, err = GetTextOrDefault(a.reader, "Title", f.Title, a.out); err != nil {
		return err
	}
	desc, err := GetMultiline(a.reader, "Describe your experience", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		f.Description = desc
	}
	if f.Country, err = GetTextOrDefault(a.reader, "Country", f.Country, a.out); err != nil {
		return err
	}

	paths, err := GetPaths(a.reader, "Attach an image and/or a video", a.out)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		f.Media = f.Media[:0]
		for _, p := range paths {
			m, err := uploads.FromPath(p)
			if err != nil {
				return err
			}
			f.Media = append(f.Media, m)
		}
		f.Tracker = uploads.NewTracker()
	}

	tell, err := a.tells.Submit(ctx, f)
	if err != nil {
		printFailedUploads(a, f.Tracker)
		return a.formError(&f.State, err)
	}

	fmt.Fprintln(a.out, f.State.Status().Success)
	printTells(a, []models.Tell{*tell})
	return nil
}

func printFailedUploads(a *App, t *uploads.Tracker) {
	for _, it := range t.Items() {
		if it.Err != nil {
			fmt.Fprintf(a.out, "  %s: upload failed\n", it.Name)
		}
	}
}

// Claim files a request to represent a brand.
func (a *App) Claim(ctx context.Context, _ []string) error {
	if err := a.views.SetView(view.ViewBrandClaim); err != nil {
		fmt.Fprintln(a.out, "Please sign in to claim a brand.")
		return nil
	}

	f := a.claimForm
	if f.WorkEmail == "" {
		if s := a.session.Current(); s != nil && !s.Demo {
			f.WorkEmail = s.Email
		}
	}

	var err error
	prompts := []struct {
		label string
		field *string
	}{
		{"Brand name", &f.BrandName},
		{"Your full name", &f.ClaimantName},
		{"Work email", &f.WorkEmail},
		{"Job title", &f.JobTitle},
		{"Phone (optional)", &f.Phone},
		{"Website (optional)", &f.Website},
	}
	for _, p := range prompts {
		if *p.field, err = GetTextOrDefault(a.reader, p.label, *p.field, a.out); err != nil {
			return err
		}
	}

	paths, err := GetPaths(a.reader, "Supporting documents", a.out)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		f.Documents = f.Documents[:0]
		for _, p := range paths {
			d, err := uploads.FromPath(p)
			if err != nil {
				return err
			}
			f.Documents = append(f.Documents, d)
		}
		f.Tracker = uploads.NewTracker()
	}

	id, err := a.claims.Submit(ctx, f)
	if err != nil {
		printFailedUploads(a, f.Tracker)
		return a.formError(&f.State, err)
	}

	a.claimForm = workflows.NewBrandClaimForm()
	fmt.Fprintf(a.out, "%s (reference %s)\n", f.State.Status().Success, id)
	return nil
}

// Feed lists recent tells.
func (a *App) Feed(ctx context.Context, _ []string) error {
	if err := a.feed.Load(ctx); err != nil {
		return err
	}
	printTells(a, a.feed.Tells())
	return nil
}

// Claims lists brand claims for review (admins only).
func (a *App) Claims(ctx context.Context, _ []string) error {
	switch err := a.views.SetView(view.ViewAdmin); {
	case errors.Is(err, view.ErrSignInRequired):
		fmt.Fprintln(a.out, "Please sign in first.")
		return nil
	case err != nil:
		fmt.Fprintln(a.out, "Only admins can review claims.")
		return nil
	}

	claims, err := a.records.ListClaims(ctx)
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		fmt.Fprintln(a.out, "No claims.")
	}
	for _, c := range claims {
		fmt.Fprintf(a.out, "%s  %-10s  %-20s  %s <%s>, %d document(s)\n",
			c.CreatedAt.Format(time.DateOnly), c.Status, c.BrandName, c.ClaimantName, c.WorkEmail, len(c.DocumentURLs))
	}
	return nil
}
