package auth

import (
	"github.com/veritasos/ordem-backend/internal/db"
	"github.com/veritasos/ordem-backend/internal/utils"
)

type SessionInfo struct{}

func (si SessionInfo) FindSessionByToken(token string) (utils.SessionData, error) {
	var session Session

	err := db.DB.First(&session, "token = ?", token).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
