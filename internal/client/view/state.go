package view

import "fmt"

// ViewState selects a sub-view independently of the URL path.
type ViewState string

const (
	ViewHome           ViewState = "home"
	ViewTellForm       ViewState = "tell-form"
	ViewAuth           ViewState = "auth"
	ViewProfile        ViewState = "profile"
	ViewAdmin          ViewState = "admin"
	ViewBrandClaim     ViewState = "brand-claim"
	ViewSearch         ViewState = "search"
	ViewBrandDashboard ViewState = "brand-dashboard"
	ViewAwards         ViewState = "awards"
	ViewResolutions    ViewState = "resolutions"
)

var allViews = []ViewState{
	ViewHome, ViewTellForm, ViewAuth, ViewProfile, ViewAdmin,
	ViewBrandClaim, ViewSearch, ViewBrandDashboard, ViewAwards, ViewResolutions,
}

func ParseViewState(s string) (ViewState, error) {
	for _, v := range allViews {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Trigger is an event that may move ViewState without the user asking.
type Trigger string

const (
	// SessionAppeared fires when the session goes from absent to present.
	SessionAppeared Trigger = "session-appeared"
	// SessionEnded fires when the session goes from present to absent.
	SessionEnded Trigger = "session-ended"
)

// Transition moves ViewState from From to To when On fires.
type Transition struct {
	On   Trigger
	From ViewState
	To   ViewState
}

// Transitions is the complete set of automatic ViewState changes. The path
// axis is never touched by them.
var Transitions = []Transition{
	{On: SessionAppeared, From: ViewAuth, To: ViewHome},
	{On: SessionEnded, From: ViewProfile, To: ViewHome},
	{On: SessionEnded, From: ViewAdmin, To: ViewHome},
	{On: SessionEnded, From: ViewBrandDashboard, To: ViewHome},
}

// next returns the state after t fires in v.
func next(v ViewState, t Trigger) ViewState {
	for _, tr := range Transitions {
		if tr.On == t && tr.From == v {
			return tr.To
		}
	}
	return v
}
