// Package poller bridges the external chain into the ledger: it watches the
// treasury for new transfers and applies each one exactly once.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magiccarpet/presale_bot/internal/repository"
	"github.com/magiccarpet/presale_bot/internal/service"
	"github.com/magiccarpet/presale_bot/internal/solana"
	"github.com/magiccarpet/presale_bot/utils"
)

// ChainClient lists recent treasury deposits. Implemented by solana.Client.
type ChainClient interface {
	RecentTransfers(ctx context.Context) ([]solana.Transfer, error)
}

// Ledger is the slice of the service the poller drives.
type Ledger interface {
	HasPayment(ctx context.Context, signature string) (bool, error)
	ProcessTransfer(ctx context.Context, transfer solana.Transfer) (*service.PaymentResult, error)
}

// Notifier delivers a message to a user. Failures are logged and swallowed;
// they never affect ledger state.
type Notifier interface {
	Notify(userID int64, text string) error
}

type Config struct {
	Client      ChainClient
	Ledger      Ledger
	Notifier    Notifier
	Interval    time.Duration
	TokenSymbol string
	Logger      *utils.Logger
}

type Poller struct {
	client      ChainClient
	ledger      Ledger
	notifier    Notifier
	interval    time.Duration
	tokenSymbol string
	logger      *utils.Logger
}

func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Poller{
		client:      cfg.Client,
		ledger:      cfg.Ledger,
		notifier:    cfg.Notifier,
		interval:    cfg.Interval,
		tokenSymbol: cfg.TokenSymbol,
		logger:      cfg.Logger,
	}
}

// Run polls until ctx is cancelled. Each pass is independent and idempotent,
// so a failed query is simply retried on the next tick with no backoff.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Infof("Starting payment poller (interval %s)", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			p.logger.Errorf("Payment check error: %v", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Payment poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll runs a single reconciliation pass.
func (p *Poller) Poll(ctx context.Context) error {
	transfers, err := p.client.RecentTransfers(ctx)
	if err != nil {
		return err
	}

	for _, transfer := range transfers {
		// Advisory pre-filter; RecordPayment remains the authority.
		seen, err := p.ledger.HasPayment(ctx, transfer.Signature)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		result, err := p.ledger.ProcessTransfer(ctx, transfer)
		switch {
		case errors.Is(err, repository.ErrDuplicatePayment):
			p.logger.Debugf("Transfer %s already recorded", transfer.Signature)
			continue
		case errors.Is(err, service.ErrUnresolvedPayer):
			p.logger.Warnf("Transfer %s pending: %v", transfer.Signature, err)
			continue
		case err != nil:
			return fmt.Errorf("failed to process transfer %s: %w", transfer.Signature, err)
		}

		p.notify(result)
	}

	return nil
}

func (p *Poller) notify(result *service.PaymentResult) {
	payerMsg := fmt.Sprintf(
		"🎉 Payment confirmed!\nYou received %d %s for %s USDT.",
		result.Tokens, p.tokenSymbol, result.ExternalAmount,
	)
	if err := p.notifier.Notify(result.Payer.TelegramID, payerMsg); err != nil {
		p.logger.Errorf("Failed to notify payer %d: %v", result.Payer.TelegramID, err)
	}

	if result.ReferrerID == nil || result.Bonus <= 0 {
		return
	}

	bonusMsg := fmt.Sprintf(
		"🎁 Referral Bonus!\nYou earned %d %s from your referral's purchase.",
		result.Bonus, p.tokenSymbol,
	)
	if err := p.notifier.Notify(*result.ReferrerID, bonusMsg); err != nil {
		p.logger.Errorf("Failed to notify referrer %d: %v", *result.ReferrerID, err)
	}
}
