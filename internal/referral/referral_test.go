package referral

import (
	"testing"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSignupBonus(t *testing.T) {
	referrer := &models.User{TelegramID: 1}
	newUser := &models.User{TelegramID: 2}

	ops, err := SignupBonus(newUser, referrer, 500)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, int64(1), ops[0].UserID)
	require.Equal(t, int64(500), ops[0].Amount)
	require.Equal(t, models.CreditReasonReferralSignup, ops[0].Reason)
}

func TestSignupBonusRejectsSelfReferral(t *testing.T) {
	user := &models.User{TelegramID: 1}

	_, err := SignupBonus(user, user, 500)
	require.ErrorIs(t, err, ErrInvalidReferral)
}

func TestSignupBonusRejectsMissingReferrer(t *testing.T) {
	newUser := &models.User{TelegramID: 2}

	_, err := SignupBonus(newUser, nil, 500)
	require.ErrorIs(t, err, ErrInvalidReferral)
}

func TestSignupBonusRejectsExistingReferrer(t *testing.T) {
	existing := int64(9)
	newUser := &models.User{TelegramID: 2, ReferrerID: &existing}
	referrer := &models.User{TelegramID: 1}

	_, err := SignupBonus(newUser, referrer, 500)
	require.ErrorIs(t, err, ErrInvalidReferral)
}

func TestPurchaseBonusFloors(t *testing.T) {
	referrerID := int64(1)
	payer := &models.User{TelegramID: 2, ReferrerID: &referrerID}
	rate := decimal.RequireFromString("0.10")

	tests := []struct {
		name   string
		tokens int64
		want   int64
	}{
		{"even", 1000, 100},
		{"floors down", 7, 0},
		{"floors fraction", 1005, 100},
		{"large purchase", 200000, 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := PurchaseBonus(payer, tt.tokens, rate)
			if tt.want == 0 {
				require.Empty(t, ops)
				return
			}
			require.Len(t, ops, 1)
			require.Equal(t, referrerID, ops[0].UserID)
			require.Equal(t, tt.want, ops[0].Amount)
			require.Equal(t, models.CreditReasonReferralBonus, ops[0].Reason)
		})
	}
}

func TestPurchaseBonusWithoutReferrer(t *testing.T) {
	payer := &models.User{TelegramID: 2}
	require.Empty(t, PurchaseBonus(payer, 1000, decimal.RequireFromString("0.10")))
}

// Single level only: the op list never targets the referrer's own referrer.
func TestPurchaseBonusSingleLevel(t *testing.T) {
	referrerID := int64(2)
	payer := &models.User{TelegramID: 3, ReferrerID: &referrerID}

	ops := PurchaseBonus(payer, 1000, decimal.RequireFromString("0.10"))
	require.Len(t, ops, 1)
	require.Equal(t, referrerID, ops[0].UserID)
}
