package fx

import (
	"time"

	"Kindfund/config"
	"Kindfund/internal/middleware"

	"go.uber.org/fx"
)

// UserRateLimiter e o limitador das rotas autenticadas.
type UserRateLimiter struct {
	*middleware.RateLimiter
}

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newJwtService,
		newPublicRateLimiter,
		newUserRateLimiter,
	),
)

func newJwtService(cfg *config.Config) (*middleware.JwtService, error) {
	return middleware.NewJwtService(cfg.JWT)
}

func newPublicRateLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(100, time.Minute)
}

func newUserRateLimiter() UserRateLimiter {
	return UserRateLimiter{middleware.NewRateLimiter(300, time.Minute)}
}
