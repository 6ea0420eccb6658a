//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"edu-resources/internal/config"
	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/logger"
	"edu-resources/internal/infrastructure/storage"
	"edu-resources/internal/interfaces/httpserver"
)

var resourceSet = wire.NewSet(
	provideRepository,
	storage.New,
	domain.NewService,
)

// BuildApplication assembles the resource API with Wire. The cleanup func
// closes the registry.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		resourceSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}
