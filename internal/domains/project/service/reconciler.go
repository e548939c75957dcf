package service

import (
	"fmt"

	"portfolio-backend/internal/domains/project/model"
)

// Uploads holds the URL stored for each incoming item, by position.
// An empty string means the item came without a new file.
type Uploads struct {
	Features    []string
	Screenshots []string
}

func (u Uploads) all() []string {
	var urls []string
	for _, list := range [][]string{u.Features, u.Screenshots} {
		for _, url := range list {
			if url != "" {
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func (u Uploads) feature(i int) string    { return at(u.Features, i) }
func (u Uploads) screenshot(i int) string { return at(u.Screenshots, i) }

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

// Reconciliation is the full replacement set for an update.
type Reconciliation struct {
	Features    []model.Feature
	Challenges  []model.Challenge
	Screenshots []model.Screenshot
	// Orphaned lists stored image URLs the new collections no longer reference.
	Orphaned []string
}

// Reconcile merges incoming items with the stored project by position.
// Item i takes its new upload if any, otherwise stored item i's image.
// Stored items beyond the incoming count are dropped.
func Reconcile(stored *model.Project, req model.UpdateProjectRequest, uploads Uploads) (*Reconciliation, error) {
	out := &Reconciliation{
		Features:    make([]model.Feature, 0, len(req.Features)),
		Challenges:  make([]model.Challenge, 0, len(req.Challenges)),
		Screenshots: make([]model.Screenshot, 0, len(req.Screenshots)),
	}
	verr := &model.ValidationError{}

	for i, in := range req.Features {
		url := uploads.feature(i)
		if url == "" && i < len(stored.Features) {
			url = stored.Features[i].ImageURL
		}
		if url == "" {
			verr.Issues = append(verr.Issues, missingImage("features", i))
		}
		out.Features = append(out.Features, model.Feature{
			Title:       in.Title,
			Description: in.Description,
			ImageURL:    url,
			ImageAlt:    in.ImageAlt,
		})
	}

	for i, in := range req.Screenshots {
		url := uploads.screenshot(i)
		if url == "" && i < len(stored.Screenshots) {
			url = stored.Screenshots[i].ImageURL
		}
		if url == "" {
			verr.Issues = append(verr.Issues, missingImage("screenshots", i))
		}
		out.Screenshots = append(out.Screenshots, model.Screenshot{
			ImageURL:    url,
			ImageAlt:    in.ImageAlt,
			Description: in.Description,
		})
	}

	for _, in := range req.Challenges {
		out.Challenges = append(out.Challenges, model.Challenge{
			Title:       in.Title,
			Description: in.Description,
		})
	}
	out.Challenges = model.Renumber(out.Challenges)

	if len(verr.Issues) > 0 {
		return nil, verr
	}

	out.Orphaned = orphaned(stored, out)
	return out, nil
}

// orphaned returns stored image URLs absent from the reconciled collections.
func orphaned(stored *model.Project, next *Reconciliation) []string {
	keep := make(map[string]struct{}, len(next.Features)+len(next.Screenshots))
	for _, f := range next.Features {
		keep[f.ImageURL] = struct{}{}
	}
	for _, s := range next.Screenshots {
		keep[s.ImageURL] = struct{}{}
	}

	var out []string
	seen := map[string]struct{}{}
	for _, url := range stored.ImageURLs() {
		if _, ok := keep[url]; ok {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}

func missingImage(collection string, i int) model.Issue {
	return model.Issue{
		Field:   fmt.Sprintf("%s[%d].imageFile", collection, i),
		Message: "image is required for new items",
	}
}
