package repository

import (
	"context"
	"fmt"

	"github.com/magiccarpet/presale_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HasPayment is the poller's advisory pre-filter. The authoritative dedup
// check is the conditional insert inside RecordPayment.
func (r *Repository) HasPayment(ctx context.Context, signature string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("signature = ?", signature).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payment %s: %w", signature, err)
	}
	return count > 0, nil
}

// RecordPayment claims the transfer signature and applies the credit batch as
// one transaction. The insert-or-nothing on the signature primary key is what
// collapses concurrent observations of the same transfer: whoever loses the
// race gets ErrDuplicatePayment and must not credit anything.
func (r *Repository) RecordPayment(ctx context.Context, payment *models.Payment, ops []models.CreditOp) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(payment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicatePayment
		}

		return applyCredits(tx, ops, &payment.Signature)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("Recorded payment %s for user %d (%d credit ops)",
		payment.Signature, payment.UserID, len(ops))
	return nil
}

func (r *Repository) GetPayment(ctx context.Context, signature string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "signature = ?", signature).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", signature, err)
	}
	return &payment, nil
}
