package repository

import (
	"context"
	"testing"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/shopspring/decimal"
)

func TestStats(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	referrer := mustCreateUser(t, repo, 1, 1000)
	payer := mustCreateUser(t, repo, 2, 1000)

	signup := []models.CreditOp{{UserID: referrer.TelegramID, Amount: 500, Reason: models.CreditReasonReferralSignup}}
	if err := repo.SetReferrer(ctx, payer.TelegramID, referrer.TelegramID, signup); err != nil {
		t.Fatalf("set referrer: %v", err)
	}

	payment := &models.Payment{
		Signature:      "sig-stats",
		UserID:         payer.TelegramID,
		ExternalAmount: decimal.RequireFromString("50"),
		TokensCredited: 200000,
	}
	ops := []models.CreditOp{
		{UserID: payer.TelegramID, Amount: 200000, Reason: models.CreditReasonPurchase},
		{UserID: referrer.TelegramID, Amount: 20000, Reason: models.CreditReasonReferralBonus},
	}
	if err := repo.RecordPayment(ctx, payment, ops); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.TotalReferrals != 1 {
		t.Errorf("expected 1 referral, got %d", stats.TotalReferrals)
	}
	if stats.TotalTokensSold != 200000 {
		t.Errorf("expected 200000 tokens sold, got %d", stats.TotalTokensSold)
	}
	if !stats.TotalUSDT.Equal(decimal.RequireFromString("50")) {
		t.Errorf("expected 50 USDT total, got %s", stats.TotalUSDT)
	}

	// Conservation: every balance unit is backed by an audit row.
	wantBalance := int64(1000 + 1000 + 500 + 200000 + 20000)
	if stats.TotalBalance != wantBalance {
		t.Errorf("expected total balance %d, got %d", wantBalance, stats.TotalBalance)
	}

	credits, err := repo.SumCredits(ctx)
	if err != nil {
		t.Fatalf("sum credits: %v", err)
	}
	if credits != stats.TotalBalance {
		t.Errorf("conservation violated: balances %d != credits %d", stats.TotalBalance, credits)
	}
}

func TestStatsEmptyLedger(t *testing.T) {
	repo := setupTestRepo(t)

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 0 || stats.TotalBalance != 0 || stats.TotalTokensSold != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
