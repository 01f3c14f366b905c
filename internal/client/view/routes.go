package view

import (
	"net/url"
	"strings"
)

// Page is a top-level page selected by the URL path.
type Page string

const (
	PageHome            Page = "home"
	PageAbout           Page = "about"
	PageContact         Page = "contact"
	PageFAQ             Page = "faq"
	PageGuidelines      Page = "guidelines"
	PageHowItWorks      Page = "how-it-works"
	PagePrivacy         Page = "privacy"
	PageTerms           Page = "terms"
	PageBrowseStories   Page = "browse-stories"
	PageBrands          Page = "brands"
	PageShareExperience Page = "share-experience"
	PageDashboard       Page = "dashboard"
	PageAuth            Page = "auth"
	PageAuthCallback    Page = "auth-callback"
)

// Routes maps paths to pages. Unmatched paths fall back to PageHome.
var Routes = map[string]Page{
	"/":                 PageHome,
	"/about":            PageAbout,
	"/contact":          PageContact,
	"/faq":              PageFAQ,
	"/guidelines":       PageGuidelines,
	"/how-it-works":     PageHowItWorks,
	"/privacy":          PagePrivacy,
	"/terms":            PageTerms,
	"/browse-stories":   PageBrowseStories,
	"/brands":           PageBrands,
	"/share-experience": PageShareExperience,
	"/dashboard":        PageDashboard,
	"/auth":             PageAuth,
	"/auth/callback":    PageAuthCallback,
	"/auth-callback":    PageAuthCallback,
}

// Route is a resolved location.
type Route struct {
	Path  string
	Page  Page
	Query url.Values
}

// Resolve parses raw (path plus optional query) and finds its page.
func Resolve(raw string) Route {
	u, err := url.Parse(raw)
	if err != nil {
		return Route{Path: "/", Page: PageHome, Query: url.Values{}}
	}

	p := u.Path
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}

	page, ok := Routes[p]
	if !ok {
		page = PageHome
	}
	return Route{Path: p, Page: page, Query: u.Query()}
}
