package workflows

import (
	"context"
	"net/mail"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/logging"
)

type ClaimSubmitter interface {
	SubmitBrandClaim(ctx context.Context, r functions.BrandClaimRequest) (functions.BrandClaimResponse, error)
}

// BrandClaimForm holds a request to represent a brand.
type BrandClaimForm struct {
	BrandName    string
	ClaimantName string
	WorkEmail    string
	JobTitle     string
	Phone        string
	Website      string
	Documents    []uploads.File

	State   FormState
	Tracker *uploads.Tracker
}

func NewBrandClaimForm() *BrandClaimForm {
	return &BrandClaimForm{Tracker: uploads.NewTracker()}
}

func (f *BrandClaimForm) Validate() error {
	switch {
	case strings.TrimSpace(f.BrandName) == "":
		return invalid("brand_name", "Please name the brand you represent.")
	case strings.TrimSpace(f.ClaimantName) == "":
		return invalid("claimant_name", "Please enter your full name.")
	case strings.TrimSpace(f.WorkEmail) == "":
		return invalid("work_email", "Please enter your work email.")
	case strings.TrimSpace(f.JobTitle) == "":
		return invalid("job_title", "Please enter your job title.")
	}
	if _, err := mail.ParseAddress(f.WorkEmail); err != nil {
		return invalid("work_email", "Please enter a valid work email.")
	}
	if len(f.Documents) == 0 {
		return invalid("documents", "Attach at least one document proving your role.")
	}
	return nil
}

type BrandClaimWorkflow struct {
	fns      ClaimSubmitter
	uploader *uploads.Uploader
	notice   *Notice
	log      logging.Logger
}

func NewBrandClaimWorkflow(fns ClaimSubmitter, uploader *uploads.Uploader, notice *Notice, log logging.Logger) *BrandClaimWorkflow {
	return &BrandClaimWorkflow{fns: fns, uploader: uploader, notice: notice, log: log.With("component", "claim-form")}
}

// Submit uploads the supporting documents and files the claim. Success is
// reported through the notice, which dismisses itself.
func (w *BrandClaimWorkflow) Submit(ctx context.Context, f *BrandClaimForm) (string, error) {
	if err := f.State.Begin(); err != nil {
		return "", err
	}

	id, err := w.submit(ctx, f)
	if err != nil {
		f.State.Fail(userMessage(ctx, w.log, err))
		return "", err
	}

	msg := "Your claim has been submitted. We'll review it and get back to you."
	f.State.Succeed(msg)
	w.notice.Show(msg)
	return id, nil
}

func (w *BrandClaimWorkflow) submit(ctx context.Context, f *BrandClaimForm) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	urls, err := w.uploader.UploadAll(ctx, f.Tracker, f.Documents)
	if err != nil {
		return "", err
	}
	if !f.Tracker.CanSubmit() {
		return "", ErrInFlight
	}

	resp, err := w.fns.SubmitBrandClaim(ctx, functions.BrandClaimRequest{
		BrandName:    strings.TrimSpace(f.BrandName),
		ClaimantName: strings.TrimSpace(f.ClaimantName),
		WorkEmail:    strings.TrimSpace(f.WorkEmail),
		JobTitle:     strings.TrimSpace(f.JobTitle),
		Phone:        f.Phone,
		Website:      f.Website,
		DocumentURLs: urls,
	})
	if err != nil {
		return "", err
	}
	return resp.ClaimID, nil
}
