package db

import (
	"time"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/magiccarpet/presale_bot/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Error),
	})

	if err != nil {
		return nil, err
	}

	log.Info("✅ Database connection successfully")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, log *utils.Logger) error {
	log.Info("📦 Migrating database...")

	entities := []interface{}{
		&models.User{},
		&models.Payment{},
		&models.Credit{},
	}

	if err := db.AutoMigrate(entities...); err != nil {
		log.Errorf("✖ Failed to migrate database: %v", err)
		return err
	}

	log.Info("✅ Database migrated")
	return nil
}
