// Package referral computes referral bonuses. Everything here is pure: the
// functions take ledger records and return credit ops, they never touch
// storage themselves.
package referral

import (
	"errors"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidReferral covers self-referral, an unknown referrer, and a
	// referrer that is already set. The signup itself still proceeds, just
	// without a bonus.
	ErrInvalidReferral = errors.New("referral: invalid referral")
)

// SignupBonus validates a signup referral and returns the fixed reward for
// the referrer. The relation itself is persisted by the ledger store in the
// same transaction as these ops.
func SignupBonus(newUser, referrer *models.User, reward int64) ([]models.CreditOp, error) {
	if newUser == nil || referrer == nil {
		return nil, ErrInvalidReferral
	}
	if newUser.TelegramID == referrer.TelegramID {
		return nil, ErrInvalidReferral
	}
	if newUser.ReferrerID != nil {
		return nil, ErrInvalidReferral
	}

	return []models.CreditOp{{
		UserID: referrer.TelegramID,
		Amount: reward,
		Reason: models.CreditReasonReferralSignup,
	}}, nil
}

// PurchaseBonus returns floor(tokens * rate) for the payer's referrer, or
// nothing when the payer was not referred. Single level only: the referrer's
// own referrer receives nothing.
func PurchaseBonus(payer *models.User, tokensCredited int64, rate decimal.Decimal) []models.CreditOp {
	if payer == nil || payer.ReferrerID == nil || tokensCredited <= 0 {
		return nil
	}

	bonus := decimal.NewFromInt(tokensCredited).Mul(rate).Floor().IntPart()
	if bonus <= 0 {
		return nil
	}

	return []models.CreditOp{{
		UserID: *payer.ReferrerID,
		Amount: bonus,
		Reason: models.CreditReasonReferralBonus,
	}}
}
