package app

import (
	"github.com/formaplus/elearning-backend/internal/middleware"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, svcs.Auth),
	}
}
