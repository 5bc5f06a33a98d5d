package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/magiccarpet/presale_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	ctx := context.Background()
	text := update.Message.Text
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	b.logger.Debugf("Processing message from user %d: %s", userID, text)

	if update.Message.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	if b.getUserState(userID) == stateAwaitingWallet {
		b.handleWalletInput(ctx, chatID, userID, text)
		return
	}

	user, err := b.requireUser(ctx, chatID, userID)
	if err != nil {
		return
	}

	switch text {
	case "Check Balance":
		b.handleBalance(chatID, user)
	case "Buy Presale":
		b.handlePresale(chatID, user)
	case "My Referral Link":
		b.handleReferralLink(chatID, userID)
	case "Set Wallet":
		b.setState(userID, stateAwaitingWallet)
		b.sendMessage(chatID, "Please send your Solana wallet address.", tgbotapi.NewRemoveKeyboard(true))
	default:
		b.sendMessage(chatID, "Choose an option below 👇", GetMainMenu())
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	switch update.Message.Command() {
	case "start":
		b.handleStart(ctx, chatID, userID, update.Message.CommandArguments())
	case "assign":
		b.handleAssign(ctx, chatID, userID, update.Message.CommandArguments())
	case "broadcast":
		b.handleBroadcast(ctx, chatID, userID, update.Message.CommandArguments())
	case "stats":
		b.handleStats(ctx, chatID, userID)
	default:
		b.sendMessage(chatID, "Unknown command. Use the menu.", GetMainMenu())
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, args string) {
	var referrerID *int64
	if args = strings.TrimSpace(args); args != "" {
		if id, err := strconv.ParseInt(args, 10, 64); err == nil {
			referrerID = &id
		}
	}

	user, created, err := b.service.RegisterUser(ctx, userID, referrerID)
	if err != nil {
		b.logger.Errorf("Failed to register user %d: %v", userID, err)
		b.sendMessage(chatID, "Something went wrong. Please try again later.", nil)
		return
	}

	if created {
		b.sendMessage(chatID, fmt.Sprintf(
			"🎉 Welcome to %s (%s) Airdrop!\n\nYou've received %d %s for joining.",
			b.config.TokenName, b.config.TokenSymbol, b.config.AirdropReward, b.config.TokenSymbol,
		), nil)

		if user.ReferrerID != nil {
			b.Notify(*user.ReferrerID, fmt.Sprintf(
				"🎉 You earned %d %s for a referral!",
				b.config.ReferralReward, b.config.TokenSymbol,
			))
		}
	}

	b.sendMessage(chatID, "Choose an option below 👇", GetMainMenu())
}

func (b *Bot) handleBalance(chatID int64, user *models.User) {
	wallet := user.Wallet
	if wallet == "" {
		wallet = "❌ Not set"
	}
	b.sendMessage(chatID, fmt.Sprintf(
		"💰 Your balance: %d %s\n🏦 Wallet: %s",
		user.Balance, b.config.TokenSymbol, wallet,
	), GetMainMenu())
}

func (b *Bot) handlePresale(chatID int64, user *models.User) {
	b.sendMessage(chatID, fmt.Sprintf(
		"💎 Presale Price: $%s per %s\n\n"+
			"Send USDT (SPL) to:\n%s\n\n"+
			"⚠️ Include this reference in the transfer memo so we can credit you:\n%s\n\n"+
			"✅ Payments are verified automatically, tokens will be credited to you.",
		b.config.PresaleRate, b.config.TokenSymbol, b.config.TreasuryAddress, user.PaymentRef,
	), GetMainMenu())
}

func (b *Bot) handleReferralLink(chatID, userID int64) {
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.API.Self.UserName, userID)
	b.sendMessage(chatID, fmt.Sprintf(
		"🔗 Your referral link:\n%s\n\nEarn %d %s for each friend who joins!",
		link, b.config.ReferralReward, b.config.TokenSymbol,
	), GetMainMenu())
}

func (b *Bot) handleWalletInput(ctx context.Context, chatID, userID int64, text string) {
	address := strings.TrimSpace(text)
	if !IsValidSolanaAddress(address) {
		b.sendMessage(chatID, "❌ Invalid Solana address. Try again.", nil)
		return
	}

	if err := b.service.SetWallet(ctx, userID, address); err != nil {
		b.logger.Errorf("Failed to set wallet for user %d: %v", userID, err)
		b.sendMessage(chatID, "Failed to save wallet. Please try again later.", GetMainMenu())
		return
	}

	b.setState(userID, stateDefault)
	b.sendMessage(chatID, fmt.Sprintf("✅ Wallet address set: %s", address), GetMainMenu())
}

// requireUser loads the sender's ledger record, registering them on first
// contact so menu taps before /start still work.
func (b *Bot) requireUser(ctx context.Context, chatID, userID int64) (*models.User, error) {
	user, _, err := b.service.RegisterUser(ctx, userID, nil)
	if err != nil {
		b.logger.Errorf("Failed to load user %d: %v", userID, err)
		b.sendMessage(chatID, "Something went wrong. Please try again later.", nil)
		return nil, err
	}
	return user, nil
}

// IsValidSolanaAddress reports whether the string decodes as a base58
// 32-byte public key.
func IsValidSolanaAddress(address string) bool {
	decoded := base58.Decode(address)
	return len(decoded) == 32
}
