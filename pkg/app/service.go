package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Service interface {
	Run(ctx context.Context) error
}

func actor(ctx context.Context, service Service, logger *zap.Logger) (func() error, func(err error)) {
	ctx, cancel := context.WithCancelCause(ctx)
	name := fmt.Sprintf("%T", service)

	return func() error {
			logger.Debug("service started", zap.String("service", name))
			err := service.Run(ctx)
			logger.Info("service stopped", zap.String("service", name), zap.Error(err))
			return err
		}, func(err error) {
			cancel(err)
		}
}
