package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/magiccarpet/presale_bot/internal/models"
)

func TestCreateUserGrantsAirdrop(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := mustCreateUser(t, repo, 100, 1000)
	if user.Balance != 1000 {
		t.Fatalf("expected airdrop balance 1000, got %d", user.Balance)
	}

	credits, err := repo.SumCredits(ctx)
	if err != nil {
		t.Fatalf("sum credits: %v", err)
	}
	if credits != 1000 {
		t.Fatalf("expected credit trail of 1000, got %d", credits)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	user, err := repo.GetUser(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatal("expected nil for unknown user")
	}
}

func TestGetUserByPaymentRef(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := mustCreateUser(t, repo, 1, 1000)

	got, err := repo.GetUserByPaymentRef(ctx, user.PaymentRef)
	if err != nil {
		t.Fatalf("get by payment ref: %v", err)
	}
	if got == nil || got.TelegramID != user.TelegramID {
		t.Fatalf("expected user %d, got %+v", user.TelegramID, got)
	}

	got, err = repo.GetUserByPaymentRef(ctx, "no-such-ref")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown reference")
	}
}

func TestSetReferrer(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	referrer := mustCreateUser(t, repo, 1, 1000)
	user := mustCreateUser(t, repo, 2, 1000)

	ops := []models.CreditOp{{UserID: referrer.TelegramID, Amount: 500, Reason: models.CreditReasonReferralSignup}}
	if err := repo.SetReferrer(ctx, user.TelegramID, referrer.TelegramID, ops); err != nil {
		t.Fatalf("set referrer: %v", err)
	}

	got, err := repo.GetUser(ctx, user.TelegramID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ReferrerID == nil || *got.ReferrerID != referrer.TelegramID {
		t.Fatalf("expected referrer %d, got %v", referrer.TelegramID, got.ReferrerID)
	}

	got, err = repo.GetUser(ctx, referrer.TelegramID)
	if err != nil {
		t.Fatalf("get referrer: %v", err)
	}
	if got.Balance != 1500 {
		t.Fatalf("expected referrer balance 1500, got %d", got.Balance)
	}
}

func TestSetReferrerImmutable(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first := mustCreateUser(t, repo, 1, 0)
	second := mustCreateUser(t, repo, 2, 0)
	user := mustCreateUser(t, repo, 3, 0)

	if err := repo.SetReferrer(ctx, user.TelegramID, first.TelegramID, nil); err != nil {
		t.Fatalf("set referrer: %v", err)
	}
	err := repo.SetReferrer(ctx, user.TelegramID, second.TelegramID, nil)
	if !errors.Is(err, ErrReferrerAlreadySet) {
		t.Fatalf("expected ErrReferrerAlreadySet, got %v", err)
	}

	got, _ := repo.GetUser(ctx, user.TelegramID)
	if got.ReferrerID == nil || *got.ReferrerID != first.TelegramID {
		t.Fatalf("referrer must not change, got %v", got.ReferrerID)
	}
}

func TestSetReferrerRejectsSelf(t *testing.T) {
	repo := setupTestRepo(t)

	user := mustCreateUser(t, repo, 1, 0)
	err := repo.SetReferrer(context.Background(), user.TelegramID, user.TelegramID, nil)
	if !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected ErrSelfReferral, got %v", err)
	}
}

func TestSetReferrerUnknownReferrer(t *testing.T) {
	repo := setupTestRepo(t)

	user := mustCreateUser(t, repo, 1, 0)
	err := repo.SetReferrer(context.Background(), user.TelegramID, 404, nil)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSetWallet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := mustCreateUser(t, repo, 1, 0)
	if err := repo.SetWallet(ctx, user.TelegramID, "So11111111111111111111111111111111111111112"); err != nil {
		t.Fatalf("set wallet: %v", err)
	}

	got, _ := repo.GetUser(ctx, user.TelegramID)
	if got.Wallet != "So11111111111111111111111111111111111111112" {
		t.Fatalf("wallet not persisted, got %q", got.Wallet)
	}

	if err := repo.SetWallet(ctx, 999, "addr"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreditUser(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := mustCreateUser(t, repo, 1, 1000)

	op := models.CreditOp{UserID: user.TelegramID, Amount: 250, Reason: models.CreditReasonAdmin}
	if err := repo.CreditUser(ctx, op); err != nil {
		t.Fatalf("credit user: %v", err)
	}

	got, _ := repo.GetUser(ctx, user.TelegramID)
	if got.Balance != 1250 {
		t.Fatalf("expected balance 1250, got %d", got.Balance)
	}

	op.UserID = 999
	if err := repo.CreditUser(ctx, op); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListUserIDs(t *testing.T) {
	repo := setupTestRepo(t)

	mustCreateUser(t, repo, 10, 0)
	mustCreateUser(t, repo, 20, 0)
	mustCreateUser(t, repo, 30, 0)

	ids, err := repo.ListUserIDs(context.Background())
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
}
