package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLength    = 80
	MaxMessageLength = 1000
)

// Entry is a single public guestbook message.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Website   *string   `json:"website,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateEntryRequest is the JSON body of POST /guestbook.
type CreateEntryRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Website string `json:"website"`
}

func (r *CreateEntryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Message = strings.TrimSpace(r.Message)
	r.Website = strings.TrimSpace(r.Website)
}

// ToEntry builds a new entry; the caller validates first.
func (r CreateEntryRequest) ToEntry(now time.Time) *Entry {
	e := &Entry{
		ID:        uuid.New(),
		Name:      r.Name,
		Message:   r.Message,
		CreatedAt: now.UTC().Truncate(time.Microsecond),
	}
	if r.Website != "" {
		w := r.Website
		e.Website = &w
	}
	return e
}
