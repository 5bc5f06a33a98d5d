package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magiccarpet/presale_bot/config"
	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/magiccarpet/presale_bot/internal/referral"
	"github.com/magiccarpet/presale_bot/internal/repository"
	"github.com/magiccarpet/presale_bot/utils"
)

// ErrUnresolvedPayer means a treasury transfer carries no usable payment
// reference. The transfer must not be recorded so a later poll (or manual
// reconciliation) can still pick it up.
var ErrUnresolvedPayer = errors.New("service: cannot resolve payer for transfer")

type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByPaymentRef(ctx context.Context, ref string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, airdrop models.CreditOp) error
	SetReferrer(ctx context.Context, userID, referrerID int64, ops []models.CreditOp) error
	SetWallet(ctx context.Context, userID int64, address string) error
	CreditUser(ctx context.Context, op models.CreditOp) error
	ListUserIDs(ctx context.Context) ([]int64, error)

	HasPayment(ctx context.Context, signature string) (bool, error)
	RecordPayment(ctx context.Context, payment *models.Payment, ops []models.CreditOp) error
	GetPayment(ctx context.Context, signature string) (*models.Payment, error)

	Stats(ctx context.Context) (*models.Stats, error)
	SumCredits(ctx context.Context) (int64, error)
}

type Service struct {
	repo   Repository
	config *config.Config
	logger *utils.Logger
}

func NewService(repo Repository, cfg *config.Config, logger *utils.Logger) *Service {
	return &Service{repo: repo, config: cfg, logger: logger}
}

// RegisterUser creates the user with the airdrop reward on first contact.
// The returned bool reports whether the user was created by this call. A
// referral that turns out to be invalid degrades to a plain signup.
func (s *Service) RegisterUser(ctx context.Context, userID int64, referrerID *int64) (*models.User, bool, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	user = &models.User{
		TelegramID: userID,
		PaymentRef: uuid.NewString(),
	}
	airdrop := models.CreditOp{
		UserID: userID,
		Amount: s.config.AirdropReward,
		Reason: models.CreditReasonAirdrop,
	}
	if err := s.repo.CreateUser(ctx, user, airdrop); err != nil {
		return nil, false, fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	if referrerID != nil {
		if err := s.applySignupReferral(ctx, user, *referrerID); err != nil {
			s.logger.Warnf("Ignoring invalid referral %d -> %d: %v", *referrerID, userID, err)
		} else {
			user.ReferrerID = referrerID
		}
	}

	return user, true, nil
}

func (s *Service) applySignupReferral(ctx context.Context, user *models.User, referrerID int64) error {
	referrer, err := s.repo.GetUser(ctx, referrerID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return referral.ErrInvalidReferral
	}

	ops, err := referral.SignupBonus(user, referrer, s.config.ReferralReward)
	if err != nil {
		return err
	}

	return s.repo.SetReferrer(ctx, user.TelegramID, referrerID, ops)
}

func (s *Service) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, telegramID)
}

func (s *Service) SetWallet(ctx context.Context, userID int64, address string) error {
	return s.repo.SetWallet(ctx, userID, address)
}

func (s *Service) CreditAdmin(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.repo.CreditUser(ctx, models.CreditOp{
		UserID: userID,
		Amount: amount,
		Reason: models.CreditReasonAdmin,
	})
}

func (s *Service) ListUserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDs(ctx)
}

func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) HasPayment(ctx context.Context, signature string) (bool, error) {
	return s.repo.HasPayment(ctx, signature)
}
