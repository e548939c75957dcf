package handler

import (
	"strconv"
	"strings"
	"time"

	"portfolio-backend/internal/domains/project/model"
	"portfolio-backend/internal/domains/project/multipart"
)

// projectSchema is every form name accepted by create and update.
var projectSchema = multipart.Schema{
	Scalars: []string{"title", "summary", "githubUrl", "role", "startDate", "endDate", "pin"},
	Lists:   []string{"stack"},
	Collections: map[string]multipart.Collection{
		"features":    {Fields: []string{"title", "description", "imageAlt"}, FileField: "imageFile"},
		"challenges":  {Fields: []string{"number", "title", "description"}},
		"screenshots": {Fields: []string{"imageAlt", "description"}, FileField: "imageFile"},
	},
}

var dateLayouts = []string{"2006-01-02", "2006-01"}

func toCreateRequest(doc *multipart.Document) (model.CreateProjectRequest, error) {
	req := model.CreateProjectRequest{
		Title:     doc.Scalars["title"],
		Summary:   doc.Scalars["summary"],
		GithubURL: doc.Scalars["githubUrl"],
		Role:      doc.Scalars["role"],
		Stack:     doc.Lists["stack"],
	}

	var err error
	if v, ok := doc.Scalar("startDate"); ok && strings.TrimSpace(v) != "" {
		if req.PeriodStart, err = parseDate("startDate", v); err != nil {
			return req, err
		}
	}
	if v, ok := doc.Scalar("endDate"); ok && strings.TrimSpace(v) != "" {
		end, err := parseDate("endDate", v)
		if err != nil {
			return req, err
		}
		req.PeriodEnd = &end
	}
	if v, ok := doc.Scalar("pin"); ok {
		if req.Pin, err = parsePin(v); err != nil {
			return req, err
		}
	}

	if err := mapCollections(doc, &req.Features, &req.Challenges, &req.Screenshots); err != nil {
		return req, err
	}
	return req, nil
}

func toUpdateRequest(doc *multipart.Document) (model.UpdateProjectRequest, error) {
	req := model.UpdateProjectRequest{
		Title:     optional(doc, "title"),
		Summary:   optional(doc, "summary"),
		GithubURL: optional(doc, "githubUrl"),
		Role:      optional(doc, "role"),
	}

	if v, ok := doc.Scalar("startDate"); ok {
		start, err := parseDate("startDate", v)
		if err != nil {
			return req, err
		}
		req.PeriodStart = &start
	}
	if v, ok := doc.Scalar("endDate"); ok {
		req.PeriodEndSet = true
		if strings.TrimSpace(v) != "" {
			end, err := parseDate("endDate", v)
			if err != nil {
				return req, err
			}
			req.PeriodEnd = &end
		}
	}
	if stack, ok := doc.List("stack"); ok {
		req.Stack = stack
	}
	if v, ok := doc.Scalar("pin"); ok {
		pin, err := parsePin(v)
		if err != nil {
			return req, err
		}
		req.Pin = &pin
	}

	if err := mapCollections(doc, &req.Features, &req.Challenges, &req.Screenshots); err != nil {
		return req, err
	}
	return req, nil
}

func mapCollections(doc *multipart.Document, features *[]model.FeatureInput, challenges *[]model.ChallengeInput, screenshots *[]model.ScreenshotInput) error {
	for _, rec := range doc.Collections["features"] {
		*features = append(*features, model.FeatureInput{
			Title:       rec.Fields["title"],
			Description: rec.Fields["description"],
			ImageAlt:    rec.Fields["imageAlt"],
			Image:       toUpload(rec.File),
		})
	}

	// number is required on the wire but only checked for shape; the
	// service renumbers challenges 1..N by final order.
	missing := &model.ValidationError{}
	for i, rec := range doc.Collections["challenges"] {
		in := model.ChallengeInput{
			Title:       rec.Fields["title"],
			Description: rec.Fields["description"],
		}
		v := strings.TrimSpace(rec.Fields["number"])
		if v == "" {
			missing.Issues = append(missing.Issues, model.Issue{
				Field:   "challenges[" + strconv.Itoa(i) + "].number",
				Message: "cannot be blank",
			})
		} else {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return &multipart.DecodeError{
					Field:  "challenges[" + strconv.Itoa(rec.Index) + "][number]",
					Reason: "must be a positive integer",
				}
			}
			in.Number = n
		}
		*challenges = append(*challenges, in)
	}
	if len(missing.Issues) > 0 {
		return missing
	}

	for _, rec := range doc.Collections["screenshots"] {
		*screenshots = append(*screenshots, model.ScreenshotInput{
			ImageAlt:    rec.Fields["imageAlt"],
			Description: rec.Fields["description"],
			Image:       toUpload(rec.File),
		})
	}
	return nil
}

func toUpload(f *multipart.File) *model.ImageUpload {
	if f == nil {
		return nil
	}
	return &model.ImageUpload{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data}
}

func optional(doc *multipart.Document, name string) *string {
	v, ok := doc.Scalar(name)
	if !ok {
		return nil
	}
	return &v
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &multipart.DecodeError{Field: field, Reason: "must be a date (YYYY-MM-DD or YYYY-MM)"}
}

func parsePin(v string) (bool, error) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "":
		return false, nil
	case "on":
		return true, nil
	}
	pin, err := strconv.ParseBool(v)
	if err != nil {
		return false, &multipart.DecodeError{Field: "pin", Reason: "must be a boolean"}
	}
	return pin, nil
}
