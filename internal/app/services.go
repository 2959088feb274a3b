package app

import (
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/localmedia"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/services"
)

type Services struct {
	Event     services.EventService
	Media     services.MediaService
	Search    services.SearchService
	Catalog   services.CatalogService
	Selection services.SelectionService
	User      services.UserService
	Avatar    services.AvatarService
	Auth      services.AuthService
	Dialogue  services.DialogueService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	eventService := services.NewEventService(db, log, reposet.UserEvent)
	mediaService := services.NewMediaService(log, localmedia.NewProber(log))
	searchService := services.NewSearchService(db, log, reposet.Formation)
	catalogService := services.NewCatalogService(
		db,
		log,
		reposet.Formation,
		mediaService,
		clients.ObjectStore,
		eventService,
		clients.YouTube,
		cfg.Domains,
	)
	selectionService := services.NewSelectionService(db, log, reposet.Formation, reposet.UserFormation, eventService)
	userService := services.NewUserService(db, log, reposet.User, eventService)
	avatarService := services.NewAvatarService(log, clients.ObjectStore)
	authService := services.NewAuthService(db, log, reposet.User, avatarService, eventService, cfg.JWTSecretKey, cfg.AccessTTL)
	dialogueService := services.NewDialogueService(
		log,
		services.NewCatalogAccess(searchService, catalogService),
		clients.DialogueStore,
		eventService,
	)

	return Services{
		Event:     eventService,
		Media:     mediaService,
		Search:    searchService,
		Catalog:   catalogService,
		Selection: selectionService,
		User:      userService,
		Avatar:    avatarService,
		Auth:      authService,
		Dialogue:  dialogueService,
	}
}
