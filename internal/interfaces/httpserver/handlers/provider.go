package handlers

import (
	"github.com/rs/zerolog"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
)

// Provider wires HTTP handlers.
type Provider struct {
	Upload   *UploadHandler
	Resource *ResourceHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Upload:   NewUploadHandler(cfg, service, log),
		Resource: NewResourceHandler(service, log),
	}
}
