package config

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	// TranslateError lets callers detect unique-constraint violations as
	// gorm.ErrDuplicatedKey (invoice number retry loop relies on it).
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("Failed to connect database")
	}

	DB = db
}
