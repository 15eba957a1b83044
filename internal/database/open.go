package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM connection to PostgreSQL. TranslateError lets
// repositories match gorm.ErrDuplicatedKey instead of driver error codes.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}
