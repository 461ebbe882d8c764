package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	Contact       repos.ContactRepo
	Dialog        repos.DialogRepo
	ScheduledCall repos.ScheduledCallRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		Contact:       repos.NewContactRepo(db, log),
		Dialog:        repos.NewDialogRepo(db, log),
		ScheduledCall: repos.NewScheduledCallRepo(db, log),
	}
}
