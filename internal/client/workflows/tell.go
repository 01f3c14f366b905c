package workflows

import (
	"context"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/onboarding"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/logging"
)

// TellSubmitter is the function call behind the tell form.
type TellSubmitter interface {
	SubmitTell(ctx context.Context, r functions.SubmitTellRequest) (functions.SubmitTellResponse, error)
}

// FirstTellMarker records that the user has created a tell.
type FirstTellMarker interface {
	MarkFirstTellCreated(ctx context.Context) (onboarding.State, error)
}

// TellForm holds the fields of a tell being written.
type TellForm struct {
	Type        models.TellType
	Title       string
	Description string
	BrandName   string
	Country     string
	// Media holds at most one image and one video.
	Media []uploads.File

	State   FormState
	Tracker *uploads.Tracker
}

func NewTellForm() *TellForm {
	return &TellForm{Type: models.BrandBeat, Tracker: uploads.NewTracker()}
}

// Validate checks the required fields.
func (f *TellForm) Validate() error {
	switch {
	case !f.Type.Valid():
		return invalid("type", "Choose BrandBeat or BrandBlast.")
	case strings.TrimSpace(f.BrandName) == "":
		return invalid("brand_name", "Please name the brand.")
	case strings.TrimSpace(f.Title) == "":
		return invalid("title", "Please add a title.")
	case strings.TrimSpace(f.Description) == "":
		return invalid("description", "Please describe your experience.")
	}

	images, videos := 0, 0
	for _, m := range f.Media {
		if strings.HasPrefix(m.ContentType, "video/") {
			videos++
		} else {
			images++
		}
	}
	if images > 1 || videos > 1 {
		return invalid("media", "Attach at most one image and one video.")
	}
	return nil
}

// Reset clears the fields after a successful submission.
func (f *TellForm) Reset() {
	f.Title, f.Description, f.BrandName = "", "", ""
	f.Media = nil
	f.Tracker = uploads.NewTracker()
}

// TellWorkflow submits tell forms.
type TellWorkflow struct {
	fns      TellSubmitter
	uploader *uploads.Uploader
	feed     *TellFeed
	marker   FirstTellMarker
	log      logging.Logger
}

func NewTellWorkflow(fns TellSubmitter, uploader *uploads.Uploader, feed *TellFeed, marker FirstTellMarker, log logging.Logger) *TellWorkflow {
	return &TellWorkflow{fns: fns, uploader: uploader, feed: feed, marker: marker, log: log.With("component", "tell-form")}
}

// Submit runs the tell form. On success the new tell is spliced into the
// feed, a background re-fetch is scheduled and the fields are cleared.
// On failure the fields are kept and the inline error is set.
func (w *TellWorkflow) Submit(ctx context.Context, f *TellForm) (*models.Tell, error) {
	if err := f.State.Begin(); err != nil {
		return nil, err
	}

	tell, err := w.submit(ctx, f)
	if err != nil {
		f.State.Fail(userMessage(ctx, w.log, err))
		return nil, err
	}

	w.feed.Prepend(*tell)
	w.feed.RefetchAsync(ctx)

	if w.marker != nil {
		if _, err := w.marker.MarkFirstTellCreated(ctx); err != nil {
			w.log.Warn(ctx, "recording first tell failed", "error", err)
		}
	}

	f.Reset()
	f.State.Succeed("Thanks! Your tell has been shared.")
	return tell, nil
}

func (w *TellWorkflow) submit(ctx context.Context, f *TellForm) (*models.Tell, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	req := functions.SubmitTellRequest{
		Type:        f.Type,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		BrandName:   strings.TrimSpace(f.BrandName),
		Country:     f.Country,
	}

	if len(f.Media) > 0 {
		urls, err := w.uploader.UploadAll(ctx, f.Tracker, f.Media)
		if err != nil {
			return nil, err
		}
		for i, m := range f.Media {
			if strings.HasPrefix(m.ContentType, "video/") {
				req.VideoURL = urls[i]
			} else {
				req.ImageURL = urls[i]
			}
		}
	}
	if !f.Tracker.CanSubmit() {
		return nil, ErrInFlight
	}

	resp, err := w.fns.SubmitTell(ctx, req)
	if err != nil {
		return nil, err
	}
	return &resp.Tell, nil
}
