// Package worker runs background housekeeping alongside the HTTP
// delivery.
package worker

import (
	"context"
	"log/slog"
	"time"

	"authgate/config"
	"authgate/internal/delivery"
	"authgate/internal/domain/repository"

	"go.uber.org/fx"
)

// registrySweeper periodically purges expired refresh tokens from the
// registry. Expired tokens are already rejected at exchange time by the
// signature check, so the sweep only reclaims storage; skipping a cycle
// never affects correctness.
type registrySweeper struct {
	interval  time.Duration
	tokenRepo repository.RefreshTokenRepository
	logger    *slog.Logger

	stop chan struct{}
}

// SweeperParams holds dependencies for the registry sweeper
type SweeperParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	TokenRepo repository.RefreshTokenRepository
}

// NewRegistrySweeper creates the background sweeper delivery.
func NewRegistrySweeper(params SweeperParams) (delivery.Delivery, error) {
	interval := time.Duration(0)
	if params.Cfg.Registry != nil {
		interval = params.Cfg.Registry.SweepInterval
	}

	sweeper := &registrySweeper{
		interval:  interval,
		tokenRepo: params.TokenRepo,
		logger:    params.Logger,
		stop:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			close(sweeper.stop)

			return nil
		},
	})

	return sweeper, nil
}

// Serve runs the sweep loop until the application stops. A zero interval
// disables the sweeper entirely.
func (s *registrySweeper) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("Registry sweeper disabled")

		return nil
	}

	s.logger.Info("Starting registry sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *registrySweeper) sweep(ctx context.Context) {
	purged, err := s.tokenRepo.RevokeExpired(ctx)
	if err != nil {
		s.logger.Error("Registry sweep failed", slog.Any("error", err))

		return
	}

	if purged > 0 {
		s.logger.Info("Registry sweep purged expired refresh tokens", slog.Int64("purged", purged))
	} else {
		s.logger.Debug("Registry sweep found nothing to purge")
	}
}
