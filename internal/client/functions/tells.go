package functions

import (
	"fmt"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/models"
)

type SubmitTellRequest struct {
	Type        models.TellType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	BrandName   string          `json:"brand_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	VideoURL    string          `json:"video_url,omitempty"`
	Country     string          `json:"country,omitempty"`
}

func (SubmitTellRequest) FunctionName() string { return FnSubmitTell }

func (r SubmitTellRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: type must be %s or %s", ErrInvalidRequest, models.BrandBeat, models.BrandBlast)
	}
	if err := required("title", strings.TrimSpace(r.Title)); err != nil {
		return err
	}
	if err := required("description", strings.TrimSpace(r.Description)); err != nil {
		return err
	}
	return required("brand_name", strings.TrimSpace(r.BrandName))
}

type SubmitTellResponse struct {
	Tell models.Tell `json:"tell"`
}

func (r SubmitTellResponse) check() error {
	if r.Tell.ID == "" {
		return fmt.Errorf("tell.id missing")
	}
	return nil
}
