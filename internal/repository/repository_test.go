package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/magiccarpet/presale_bot/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Payment{}, &models.Credit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewRepository(db, utils.InitLogger())
}

func mustCreateUser(t *testing.T, repo *Repository, id int64, airdrop int64) *models.User {
	t.Helper()

	user := &models.User{TelegramID: id, PaymentRef: uuid.NewString()}
	op := models.CreditOp{UserID: id, Amount: airdrop, Reason: models.CreditReasonAirdrop}
	if err := repo.CreateUser(context.Background(), user, op); err != nil {
		t.Fatalf("create user %d: %v", id, err)
	}
	return user
}
