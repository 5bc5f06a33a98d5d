package service

import (
	"context"
	"fmt"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/magiccarpet/presale_bot/internal/referral"
	"github.com/magiccarpet/presale_bot/internal/solana"
	"github.com/shopspring/decimal"
)

// PaymentResult carries what the poller needs to notify the payer and, when a
// bonus was paid, the referrer. Credits are already durable by the time it is
// returned.
type PaymentResult struct {
	Payer          *models.User
	ExternalAmount decimal.Decimal
	Tokens         int64
	ReferrerID     *int64
	Bonus          int64
}

// ProcessTransfer turns one observed treasury transfer into ledger credits,
// exactly once per signature. The payer is resolved strictly from the memo
// reference; a transfer that cannot be attributed is skipped without writing
// anything, never credited to a guessed user.
func (s *Service) ProcessTransfer(ctx context.Context, transfer solana.Transfer) (*PaymentResult, error) {
	if transfer.Reference == "" {
		return nil, fmt.Errorf("transfer %s has no memo reference: %w", transfer.Signature, ErrUnresolvedPayer)
	}

	payer, err := s.repo.GetUserByPaymentRef(ctx, transfer.Reference)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, fmt.Errorf("no user for reference %q on transfer %s: %w",
			transfer.Reference, transfer.Signature, ErrUnresolvedPayer)
	}

	tokens := transfer.Amount.Div(s.config.PresaleRateDecimal()).Floor().IntPart()

	ops := []models.CreditOp{{
		UserID: payer.TelegramID,
		Amount: tokens,
		Reason: models.CreditReasonPurchase,
	}}
	bonusOps := referral.PurchaseBonus(payer, tokens, s.config.BonusRateDecimal())
	ops = append(ops, bonusOps...)

	payment := &models.Payment{
		Signature:      transfer.Signature,
		UserID:         payer.TelegramID,
		ExternalAmount: transfer.Amount,
		TokensCredited: tokens,
	}
	if err := s.repo.RecordPayment(ctx, payment, ops); err != nil {
		return nil, err
	}

	result := &PaymentResult{
		Payer:          payer,
		ExternalAmount: transfer.Amount,
		Tokens:         tokens,
		ReferrerID:     payer.ReferrerID,
	}
	if len(bonusOps) > 0 {
		result.Bonus = bonusOps[0].Amount
	}

	s.logger.Infof("Recorded payment %s: %s USDT -> %d tokens for user %d (bonus %d)",
		payment.Signature, transfer.Amount, tokens, payer.TelegramID, result.Bonus)

	return result, nil
}
