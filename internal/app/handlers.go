package app

import (
	"github.com/formaplus/elearning-backend/internal/handlers"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Formation *handlers.FormationHandler
	Selection *handlers.SelectionHandler
	Chat      *handlers.ChatHandler
}

func wireHandlers(log *logger.Logger, cfg Config, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:      handlers.NewAuthHandler(svcs.Auth, svcs.User),
		User:      handlers.NewUserHandler(svcs.User),
		Formation: handlers.NewFormationHandler(log, svcs.Catalog),
		Selection: handlers.NewSelectionHandler(log, svcs.Selection),
		Chat:      handlers.NewChatHandler(log, svcs.Dialogue, int(cfg.DialogueTTL.Seconds())),
	}
}
