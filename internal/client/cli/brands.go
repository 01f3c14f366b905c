package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/directory"
	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/client/view"
)

func printBrands(a *App, brands []models.Brand) {
	if len(brands) == 0 {
		fmt.Fprintln(a.out, "No brands match.")
		return
	}
	for _, b := range brands {
		mark := " "
		if b.Verified {
			mark = "✓"
		}
		fmt.Fprintf(a.out, "%-12s %s %-24s %-14s %-4s %.1f (%d)\n", b.ID, mark, b.Name, b.Category, b.Country, b.Rating, b.ReviewCount)
	}
}

// Brands lists the directory. Flags narrow and order the listing:
//
//	brands -q coffee -category food -country NG -min 3 -max 5 -verified -favs -sort reviews
//
// The country defaults to the selected country; "-country all" lifts it.
func (a *App) Brands(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("brands", flag.ContinueOnError)
	fs.SetOutput(a.out)
	query := fs.String("q", "", "name or domain contains")
	category := fs.String("category", "", "category")
	country := fs.String("country", "", "country code, or all")
	minRating := fs.Float64("min", 0, "minimum rating")
	maxRating := fs.Float64("max", 5, "maximum rating")
	verified := fs.Bool("verified", false, "verified brands only")
	favs := fs.Bool("favs", false, "favourites only")
	sortBy := fs.String("sort", "", "rating, reviews, name or newest")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	key, err := directory.ParseSortKey(*sortBy)
	if err != nil {
		return err
	}

	f := directory.Filter{Query: *query, Category: *category, VerifiedOnly: *verified}
	switch *country {
	case "all":
	case "":
		if f.Country, err = a.preferences.Country(ctx); err != nil {
			a.log.Warn(ctx, "reading selected country failed", "error", err)
		}
	default:
		f.Country = *country
	}
	if *minRating > 0 || *maxRating < 5 {
		f.Rating = &directory.RatingRange{Min: *minRating, Max: *maxRating}
	}
	if *favs {
		if f.IDs, err = a.favorites.IDs(ctx); err != nil {
			return err
		}
		if len(f.IDs) == 0 {
			fmt.Fprintln(a.out, "You have no favourites yet.")
			return nil
		}
	}

	if _, err := a.views.Navigate("/brands"); err != nil {
		return err
	}

	all, err := a.records.ListBrands(ctx)
	if err != nil {
		return err
	}
	a.brands = directory.Sort(directory.Apply(all, f), key)
	printBrands(a, a.brands)
	return nil
}

// Search asks the backend for brand suggestions matching a term.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: search <term>")
		return errUsage
	}
	_ = a.views.SetView(view.ViewSearch)

	resp, err := a.fns.SearchBrands(ctx, functions.BrandSearchRequest{SearchTerm: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	if len(resp.Brands) == 0 {
		fmt.Fprintln(a.out, "No suggestions.")
	}
	for _, b := range resp.Brands {
		fmt.Fprintf(a.out, "%-24s %-24s %s\n", b.Name, b.Domain, b.LogoURL)
	}
	return nil
}

// Logo looks up a brand's logo URL.
func (a *App) Logo(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: logo <brand name>")
		return errUsage
	}
	resp, err := a.fns.FetchBrandLogo(ctx, functions.BrandLogoRequest{BrandName: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	if resp.LogoURL == "" {
		fmt.Fprintln(a.out, "No logo found.")
		return nil
	}
	fmt.Fprintln(a.out, resp.LogoURL)
	return nil
}

func (a *App) findBrand(id string) (models.Brand, bool) {
	for _, b := range a.brands {
		if b.ID == id {
			return b, true
		}
	}
	return models.Brand{}, false
}

// Compare manages the side-by-side comparison: compare [add <id>|remove <id>|clear].
func (a *App) Compare(_ context.Context, args []string) error {
	if len(args) == 0 {
		picked := a.compare.Brands()
		if len(picked) == 0 {
			fmt.Fprintf(a.out, "Nothing to compare. Add up to %d brands with 'compare add <id>'.\n", directory.MaxCompared)
			return nil
		}
		fmt.Fprintf(a.out, "%-14s", "")
		for _, b := range picked {
			fmt.Fprintf(a.out, "%-20s", b.Name)
		}
		fmt.Fprintln(a.out)
		rows := []struct {
			label string
			value func(models.Brand) string
		}{
			{"category", func(b models.Brand) string { return b.Category }},
			{"country", func(b models.Brand) string { return b.Country }},
			{"rating", func(b models.Brand) string { return fmt.Sprintf("%.1f", b.Rating) }},
			{"reviews", func(b models.Brand) string { return fmt.Sprint(b.ReviewCount) }},
			{"verified", func(b models.Brand) string { return fmt.Sprint(b.Verified) }},
		}
		for _, r := range rows {
			fmt.Fprintf(a.out, "%-14s", r.label)
			for _, b := range picked {
				fmt.Fprintf(a.out, "%-20s", r.value(b))
			}
			fmt.Fprintln(a.out)
		}
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			return errUsage
		}
		b, ok := a.findBrand(args[1])
		if !ok {
			fmt.Fprintln(a.out, "Unknown brand; list brands first.")
			return nil
		}
		switch err := a.compare.Add(b); {
		case errors.Is(err, directory.ErrCompareFull):
			fmt.Fprintf(a.out, "You can compare at most %d brands.\n", directory.MaxCompared)
		case errors.Is(err, directory.ErrAlreadyCompared):
			fmt.Fprintln(a.out, "Already comparing that brand.")
		case err != nil:
			return err
		}
	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		if !a.compare.Remove(args[1]) {
			fmt.Fprintln(a.out, "That brand isn't being compared.")
		}
	case "clear":
		a.compare.Clear()
	default:
		fmt.Fprintln(a.out, "Usage: compare [add <id>|remove <id>|clear]")
		return errUsage
	}
	return nil
}

// Export writes the last listing as csv or json, to a file or stdout.
func (a *App) Export(_ context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: export csv|json [path]")
		return errUsage
	}
	format := directory.Format(args[0])

	if len(args) == 1 {
		return directory.Export(a.out, a.brands, format)
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := directory.Export(f, a.brands, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d brands to %s\n", len(a.brands), args[1])
	return nil
}

// Fav toggles a brand in the favourites list.
func (a *App) Fav(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: fav <brand id>")
		return errUsage
	}
	added, err := a.favorites.Toggle(ctx, args[0])
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintln(a.out, "Added to favourites.")
	} else {
		fmt.Fprintln(a.out, "Removed from favourites.")
	}
	return nil
}

func (a *App) Favs(ctx context.Context, _ []string) error {
	ids, err := a.favorites.IDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "You have no favourites yet.")
		return nil
	}
	for _, id := range ids {
		if b, ok := a.findBrand(id); ok {
			fmt.Fprintf(a.out, "%-12s %s\n", id, b.Name)
		} else {
			fmt.Fprintln(a.out, id)
		}
	}
	return nil
}

// Country shows or sets the selected country. "country none" clears it.
func (a *App) Country(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c, err := a.preferences.Country(ctx)
		if err != nil {
			return err
		}
		if c == "" {
			c = "(none)"
		}
		fmt.Fprintln(a.out, c)
		return nil
	}

	code := strings.ToUpper(args[0])
	if code == "NONE" {
		code = ""
	}
	return a.preferences.SetCountry(ctx, code)
}

// Awards lists the awards of a brand, or of every brand.
func (a *App) Awards(ctx context.Context, args []string) error {
	_ = a.views.SetView(view.ViewAwards)

	req := functions.ListAwards{}
	if len(args) > 0 {
		req.BrandID = args[0]
	}
	resp, err := a.fns.Awards(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		fmt.Fprintln(a.out, "No awards yet.")
	}
	for _, aw := range resp.Data {
		fmt.Fprintf(a.out, "%-12s %-9s %s\n", aw.BrandID, aw.Tier, aw.Period)
	}
	return nil
}

// Trending shows the trending ranking for a window (24h, 7d or 30d).
func (a *App) Trending(ctx context.Context, args []string) error {
	window := "7d"
	if len(args) > 0 {
		window = args[0]
	}
	resp, err := a.fns.Trending(ctx, functions.ListTrending{Window: window, Limit: 10})
	if err != nil {
		return err
	}
	for _, b := range resp.Data {
		fmt.Fprintf(a.out, "%2d. %-24s %.2f\n", b.Rank, b.Name, b.Score)
	}
	return nil
}

// Resolutions lists the resolution cases of a brand. Brand accounts see
// their own brand; admins name one.
func (a *App) Resolutions(ctx context.Context, args []string) error {
	if err := a.views.SetView(view.ViewBrandDashboard); err != nil {
		fmt.Fprintln(a.out, "Only brand representatives and admins can see resolutions.")
		return nil
	}

	brandID := ""
	if s := a.session.Current(); s != nil && s.Metadata.Role == session.RoleBrand {
		brandID = s.Metadata.BrandID
	}
	if len(args) > 0 {
		brandID = args[0]
	}
	if brandID == "" {
		fmt.Fprintln(a.out, "Usage: resolutions <brand id>")
		return errUsage
	}

	list, err := a.records.ListResolutions(ctx, brandID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No open cases.")
	}
	for _, r := range list {
		fmt.Fprintf(a.out, "%-12s tell %-12s %-10s %s\n", r.ID, r.TellID, r.Status, r.Notes)
	}
	return nil
}

// Subscribe confirms a subscription payment by its provider reference.
func (a *App) Subscribe(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: subscribe <payment reference> <plan>")
		return errUsage
	}
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in first.")
		return nil
	}
	resp, err := a.fns.VerifyPayment(ctx, functions.VerifyPayment{Reference: args[0], Plan: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Payment %s: %s (%s)\n", resp.Data.Reference, resp.Data.Status, resp.Data.Plan)
	return nil
}
