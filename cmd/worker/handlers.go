package main

import (
	"github.com/hibiken/asynq"

	githubJob "portfolio-backend/internal/domains/github/job"
	projectJob "portfolio-backend/internal/domains/project/job"
	"portfolio-backend/internal/infrastructure/email"
	emailjob "portfolio-backend/internal/infrastructure/email/job"
	"portfolio-backend/internal/shared"
	"portfolio-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	contactEmail       *emailjob.ContactEmailHandler
	deleteImages       *projectJob.DeleteImagesHandler
	refreshGitHubCache *githubJob.RefreshCacheHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(c.Config.SMTP)

	return &HandlerRegistry{
		contactEmail:       emailjob.NewContactEmailHandler(emailSvc),
		deleteImages:       projectJob.NewDeleteImagesHandler(c.ImageService),
		refreshGitHubCache: githubJob.NewRefreshCacheHandler(c.GitHubService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendContactEmail, h.contactEmail.ProcessTask)
	mux.HandleFunc(shared.TypeDeleteProjectImages, h.deleteImages.ProcessTask)
	mux.HandleFunc(shared.TypeRefreshGitHubCache, h.refreshGitHubCache.ProcessTask)
}
