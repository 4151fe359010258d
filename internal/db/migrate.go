package db

import (
	"tradejournal/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Account{},
		&models.SetupStrategy{},
		&models.EntryType{},
		&models.Trade{},
		&models.DocumentationWidget{},
		&models.DocumentationItem{},
		&models.AuditLog{},
	)
}
