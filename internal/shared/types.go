package shared

// Task types consumed by cmd/worker.
const (
	TypeDeleteProjectImages = "project:delete_images"
	TypeSendContactEmail    = "email:contact"
	TypeRefreshGitHubCache  = "github:refresh_cache"
)

// Queues, highest priority first.
const (
	QueueMail        = "mail"
	QueueMaintenance = "maintenance"
	QueueDefault     = "default"
)

// DeleteImagesPayload lists image URLs that are no longer referenced by any project.
type DeleteImagesPayload struct {
	ProjectID string   `json:"project_id"`
	URLs      []string `json:"urls"`
}

type RefreshGitHubCachePayload struct{}
