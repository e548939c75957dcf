package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ImageUpload is a file part attached to a feature or screenshot record.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type FeatureInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageAlt    string       `json:"imageAlt"`
	Image       *ImageUpload `json:"imageFile"`
}

type ChallengeInput struct {
	Number      int    `json:"number"` // informational, overwritten by position
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ScreenshotInput struct {
	ImageAlt    string       `json:"imageAlt"`
	Description string       `json:"description"`
	Image       *ImageUpload `json:"imageFile"`
}

func (f FeatureInput) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&f.Description, validation.Length(0, maxDescriptionLen)),
		validation.Field(&f.ImageAlt, validation.Required, validation.Length(1, maxAltLen)),
	)
}

func (c ChallengeInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&c.Description, validation.Required, validation.Length(1, maxDescriptionLen)),
	)
}

func (s ScreenshotInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ImageAlt, validation.Required, validation.Length(1, maxAltLen)),
		validation.Field(&s.Description, validation.Length(0, maxDescriptionLen)),
	)
}

// CreateProjectRequest is a fully specified new project.
type CreateProjectRequest struct {
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	GithubURL   string            `json:"githubUrl"`
	Role        string            `json:"role"`
	PeriodStart time.Time         `json:"startDate"`
	PeriodEnd   *time.Time        `json:"endDate"`
	Stack       []string          `json:"stack"`
	Pin         bool              `json:"pin"`
	Features    []FeatureInput    `json:"features"`
	Challenges  []ChallengeInput  `json:"challenges"`
	Screenshots []ScreenshotInput `json:"screenshots"`
}

func (r *CreateProjectRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	r.GithubURL = strings.TrimSpace(r.GithubURL)
	r.Role = strings.TrimSpace(r.Role)
	r.Stack = NormalizeStack(r.Stack)
}

func (r CreateProjectRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&r.Summary, validation.Required, validation.Length(1, maxSummaryLen)),
		validation.Field(&r.GithubURL, validation.Required, validation.By(httpURL)),
		validation.Field(&r.Role, validation.Required, validation.Length(1, maxRoleLen)),
		validation.Field(&r.PeriodStart, validation.Required),
		validation.Field(&r.PeriodEnd, validation.By(notBefore(r.PeriodStart))),
		validation.Field(&r.Stack, stackRules()...),
		validation.Field(&r.Features,
			validation.Required,
			validation.Length(1, MaxFeatures),
			validation.Each(validation.By(featureImageAttached)),
		),
		validation.Field(&r.Challenges, validation.Required, validation.Length(1, MaxChallenges)),
		validation.Field(&r.Screenshots,
			validation.Length(0, MaxScreenshots),
			validation.Each(validation.By(screenshotImageAttached)),
		),
	)
	return FromValidation(err)
}

// UpdateProjectRequest carries a partial scalar update and full collection replacements.
// Nil scalars keep the stored value. Items without an Image keep the stored image at
// the same position.
type UpdateProjectRequest struct {
	Title       *string    `json:"title"`
	Summary     *string    `json:"summary"`
	GithubURL   *string    `json:"githubUrl"`
	Role        *string    `json:"role"`
	PeriodStart *time.Time `json:"startDate"`
	// PeriodEndSet distinguishes "absent" from "cleared": set with a nil PeriodEnd clears it.
	PeriodEndSet bool       `json:"-"`
	PeriodEnd    *time.Time `json:"endDate"`
	Stack        []string   `json:"stack"` // nil keeps the stored stack
	Pin          *bool      `json:"pin"`

	Features    []FeatureInput    `json:"features"`
	Challenges  []ChallengeInput  `json:"challenges"`
	Screenshots []ScreenshotInput `json:"screenshots"`
}

func (r *UpdateProjectRequest) Normalize() {
	for _, s := range []*string{r.Title, r.Summary, r.GithubURL, r.Role} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	r.Stack = NormalizeStack(r.Stack)
}

func (r UpdateProjectRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLen)),
		validation.Field(&r.Summary, validation.NilOrNotEmpty, validation.Length(1, maxSummaryLen)),
		validation.Field(&r.GithubURL, validation.NilOrNotEmpty, validation.By(httpURLPtr)),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.Length(1, maxRoleLen)),
		validation.Field(&r.Stack, validation.When(r.Stack != nil, stackRules()...)),
		validation.Field(&r.Features, validation.Required, validation.Length(1, MaxFeatures)),
		validation.Field(&r.Challenges, validation.Required, validation.Length(1, MaxChallenges)),
		validation.Field(&r.Screenshots, validation.Length(0, MaxScreenshots)),
	)
	return FromValidation(err)
}

// Apply copies the present scalars of r onto p.
func (r UpdateProjectRequest) Apply(p *Project) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Summary != nil {
		p.Summary = *r.Summary
	}
	if r.GithubURL != nil {
		p.GithubURL = *r.GithubURL
	}
	if r.Role != nil {
		p.Role = *r.Role
	}
	if r.PeriodStart != nil {
		p.PeriodStart = *r.PeriodStart
	}
	if r.PeriodEndSet {
		p.PeriodEnd = r.PeriodEnd
	}
	if r.Stack != nil {
		p.Stack = append([]string(nil), r.Stack...)
	}
	if r.Pin != nil {
		p.Pin = *r.Pin
	}
}

func featureImageAttached(value interface{}) error {
	if f, ok := value.(FeatureInput); ok && f.Image == nil {
		return errors.New("imageFile is required")
	}
	return nil
}

func screenshotImageAttached(value interface{}) error {
	if s, ok := value.(ScreenshotInput); ok && s.Image == nil {
		return errors.New("imageFile is required")
	}
	return nil
}
