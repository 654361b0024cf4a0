package auth

import (
	"log"

	"github.com/veritasos/ordem-backend/internal/db"
)

func Migrate() error {
	return db.DB.AutoMigrate(Models()...)
}

func Init() {
	if err := Migrate(); err != nil {
		log.Fatal("Failed to auto-migrate auth tables: ", err)
	}
}
