package repository

import (
	"errors"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/magiccarpet/presale_bot/utils"
	"gorm.io/gorm"
)

var (
	// ErrDuplicatePayment is returned when a transfer signature has already
	// been recorded. Callers treat it as the expected outcome of a race, not
	// a failure.
	ErrDuplicatePayment = errors.New("repository: payment already recorded")
	// ErrUserNotFound indicates a credit op referenced an unknown user.
	ErrUserNotFound = errors.New("repository: user not found")
	// ErrReferrerAlreadySet guards the set-once referrer invariant.
	ErrReferrerAlreadySet = errors.New("repository: referrer already set")
	// ErrSelfReferral rejects a user referring themselves.
	ErrSelfReferral = errors.New("repository: self referral")
)

type Repository struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewRepository(db *gorm.DB, logger *utils.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// applyCredits performs every balance increment of the batch inside tx and
// writes the matching audit rows. The increment is done in SQL so no
// read-modify-write window exists.
func applyCredits(tx *gorm.DB, ops []models.CreditOp, signature *string) error {
	for _, op := range ops {
		if op.Amount == 0 {
			continue
		}

		res := tx.Model(&models.User{}).
			Where("telegram_id = ?", op.UserID).
			Update("balance", gorm.Expr("balance + ?", op.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		credit := models.Credit{
			UserID:           op.UserID,
			Amount:           op.Amount,
			Reason:           op.Reason,
			PaymentSignature: signature,
		}
		if err := tx.Create(&credit).Error; err != nil {
			return err
		}
	}
	return nil
}
