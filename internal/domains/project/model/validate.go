package model

import (
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Text caps shared by requests and the aggregate.
const (
	maxTitleLen       = 200
	maxSummaryLen     = 5000
	maxRoleLen        = 120
	maxDescriptionLen = 2000
	maxAltLen         = 300
	maxStackEntryLen  = 50
	maxStackEntries   = 30
)

// Validate checks every aggregate invariant except the global pin cap,
// which needs storage and is enforced by the pin guard.
func (p Project) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&p.Summary, validation.Required, validation.Length(1, maxSummaryLen)),
		validation.Field(&p.GithubURL, validation.Required, validation.By(httpURL)),
		validation.Field(&p.Role, validation.Required, validation.Length(1, maxRoleLen)),
		validation.Field(&p.PeriodStart, validation.Required),
		validation.Field(&p.PeriodEnd, validation.By(notBefore(p.PeriodStart))),
		validation.Field(&p.Stack, stackRules()...),
		validation.Field(&p.Features, validation.Required, validation.Length(1, MaxFeatures)),
		validation.Field(&p.Challenges,
			validation.Required,
			validation.Length(1, MaxChallenges),
			validation.By(contiguousNumbers),
		),
		validation.Field(&p.Screenshots, validation.Length(0, MaxScreenshots)),
	)
	return FromValidation(err)
}

func (f Feature) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&f.Description, validation.Length(0, maxDescriptionLen)),
		validation.Field(&f.ImageURL, validation.Required.Error("image is required")),
		validation.Field(&f.ImageAlt, validation.Required, validation.Length(1, maxAltLen)),
	)
}

func (c Challenge) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Number, validation.Required, validation.Min(1)),
		validation.Field(&c.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&c.Description, validation.Required, validation.Length(1, maxDescriptionLen)),
	)
}

func (s Screenshot) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ImageURL, validation.Required.Error("image is required")),
		validation.Field(&s.ImageAlt, validation.Required, validation.Length(1, maxAltLen)),
		validation.Field(&s.Description, validation.Length(0, maxDescriptionLen)),
	)
}

func stackRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("at least one technology is required"),
		validation.Length(1, maxStackEntries),
		validation.Each(validation.Required, validation.Length(1, maxStackEntryLen)),
	}
}

func contiguousNumbers(value interface{}) error {
	challenges, _ := value.([]Challenge)
	for i, c := range challenges {
		if c.Number != i+1 {
			return errors.New("challenge numbers must be 1..N in order")
		}
	}
	return nil
}

// httpURL accepts absolute http(s) URLs only.
func httpURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func httpURLPtr(value interface{}) error {
	if s, ok := value.(*string); ok {
		if s == nil {
			return nil
		}
		return httpURL(*s)
	}
	return httpURL(value)
}

func notBefore(start time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(*time.Time)
		if end == nil || start.IsZero() {
			return nil
		}
		if end.Before(start) {
			return errors.New("must not be before the start date")
		}
		return nil
	}
}

// NormalizeStack trims entries, drops empty ones and removes case-insensitive
// duplicates keeping the first spelling.
func NormalizeStack(stack []string) []string {
	if stack == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(stack))
	out := make([]string, 0, len(stack))
	for _, s := range stack {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
