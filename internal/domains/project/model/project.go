package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxFeatures    = 3
	MaxChallenges  = 3
	MaxScreenshots = 3
	// MaxPinned is the global cap on pinned projects.
	MaxPinned = 3
)

// Project is the aggregate root. Features, Challenges and Screenshots are owned
// ordered collections and are always replaced as a whole.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	GithubURL   string     `json:"githubUrl"`
	Role        string     `json:"role"`
	PeriodStart time.Time  `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"` // nil = ongoing
	Stack       []string   `json:"stack"`
	Pin         bool       `json:"pin"`

	Features    []Feature    `json:"features"`
	Challenges  []Challenge  `json:"challenges"`
	Screenshots []Screenshot `json:"screenshots"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
	ImageAlt    string `json:"imageAlt"`
}

type Challenge struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Screenshot struct {
	ImageURL    string `json:"imageUrl"`
	ImageAlt    string `json:"imageAlt"`
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	if p.PeriodEnd != nil {
		end := *p.PeriodEnd
		cp.PeriodEnd = &end
	}
	cp.Stack = append([]string(nil), p.Stack...)
	cp.Features = append([]Feature(nil), p.Features...)
	cp.Challenges = append([]Challenge(nil), p.Challenges...)
	cp.Screenshots = append([]Screenshot(nil), p.Screenshots...)
	return &cp
}

// ImageURLs lists every image the project references, features first.
func (p *Project) ImageURLs() []string {
	urls := make([]string, 0, len(p.Features)+len(p.Screenshots))
	for _, f := range p.Features {
		if f.ImageURL != "" {
			urls = append(urls, f.ImageURL)
		}
	}
	for _, s := range p.Screenshots {
		if s.ImageURL != "" {
			urls = append(urls, s.ImageURL)
		}
	}
	return urls
}

// Renumber sets challenge numbers to 1..N in slice order.
func Renumber(challenges []Challenge) []Challenge {
	for i := range challenges {
		challenges[i].Number = i + 1
	}
	return challenges
}
