package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/novo-contact-backend/internal/data/repos/auth"
	"github.com/yungbote/novo-contact-backend/internal/data/repos/calls"
	"github.com/yungbote/novo-contact-backend/internal/data/repos/contact"
	"github.com/yungbote/novo-contact-backend/internal/data/repos/dialog"
	"github.com/yungbote/novo-contact-backend/internal/data/repos/user"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ContactRepo = contact.ContactRepo
type DialogRepo = dialog.DialogRepo

type ScheduledCallRepo = calls.ScheduledCallRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return contact.NewContactRepo(db, baseLog)
}
func NewDialogRepo(db *gorm.DB, baseLog *logger.Logger) DialogRepo {
	return dialog.NewDialogRepo(db, baseLog)
}

func NewScheduledCallRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledCallRepo {
	return calls.NewScheduledCallRepo(db, baseLog)
}
