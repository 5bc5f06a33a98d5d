package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/magiccarpet/presale_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByPaymentRef(ctx context.Context, ref string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "payment_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by payment ref %s: %w", ref, err)
	}
	return &user, nil
}

// CreateUser inserts the user together with the airdrop credit in one
// transaction, so a user row never exists without its audit trail.
func (r *Repository) CreateUser(ctx context.Context, user *models.User, airdrop models.CreditOp) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.Balance = 0
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := applyCredits(tx, []models.CreditOp{airdrop}, nil); err != nil {
			return err
		}
		return tx.First(user, "telegram_id = ?", user.TelegramID).Error
	})
}

// SetReferrer records the one-time referral relation and pays the signup
// bonus atomically. The invariants (relation unset, referrer exists, no self
// referral) are re-checked under the row lock; the pure engine check in the
// service layer is only advisory.
func (r *Repository) SetReferrer(ctx context.Context, userID, referrerID int64, ops []models.CreditOp) error {
	if userID == referrerID {
		return ErrSelfReferral
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "telegram_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.ReferrerID != nil {
			return ErrReferrerAlreadySet
		}

		var referrer models.User
		if err := tx.First(&referrer, "telegram_id = ?", referrerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&user).Update("referrer_id", referrerID).Error; err != nil {
			return err
		}

		return applyCredits(tx, ops, nil)
	})
}

func (r *Repository) SetWallet(ctx context.Context, userID int64, address string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Update("wallet", address)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreditUser applies a single credit outside the payment path (admin grants).
func (r *Repository) CreditUser(ctx context.Context, op models.CreditOp) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyCredits(tx, []models.CreditOp{op}, nil)
	})
}

func (r *Repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Order("created_at ASC").
		Pluck("telegram_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}
