package app

import (
	"context"

	"github.com/oklog/run"
	"go.uber.org/zap"
)

type App struct {
	services []Service
	runner   *run.Group
	logger   *zap.Logger
}

func NewApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		services: make([]Service, 0),
		runner:   &run.Group{},
		logger:   logger,
	}
}

func (a *App) WithService(s Service) *App {
	a.services = append(a.services, s)
	return a
}

// Run blocks until the first service returns, then stops the rest and
// reports that first error.
func (a *App) Run(ctx context.Context) error {
	for _, service := range a.services {
		a.runner.Add(actor(ctx, service, a.logger))
	}

	return a.runner.Run()
}
