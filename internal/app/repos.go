package app

import (
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	Formation     repos.FormationRepo
	UserFormation repos.UserFormationRepo
	UserEvent     repos.UserEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		Formation:     repos.NewFormationRepo(db, log),
		UserFormation: repos.NewUserFormationRepo(db, log),
		UserEvent:     repos.NewUserEventRepo(db, log),
	}
}
