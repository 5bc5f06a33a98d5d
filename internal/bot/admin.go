package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magiccarpet/presale_bot/internal/repository"
)

func (b *Bot) handleAssign(ctx context.Context, chatID, userID int64, args string) {
	if !b.config.IsAdmin(userID) {
		b.sendMessage(chatID, "❌ You are not authorized.", nil)
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.sendMessage(chatID, "Usage: /assign <telegram_id> <amount>", nil)
		return
	}

	targetID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, "❌ Invalid telegram id.", nil)
		return
	}
	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || amount <= 0 {
		b.sendMessage(chatID, "❌ Invalid amount.", nil)
		return
	}

	if err := b.service.CreditAdmin(ctx, targetID, amount); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			b.sendMessage(chatID, "❌ User not found.", nil)
			return
		}
		b.logger.Errorf("Failed to assign %d tokens to %d: %v", amount, targetID, err)
		b.sendMessage(chatID, "Failed to assign tokens.", nil)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ Assigned %d %s to %d", amount, b.config.TokenSymbol, targetID), nil)
}

func (b *Bot) handleBroadcast(ctx context.Context, chatID, userID int64, message string) {
	if !b.config.IsAdmin(userID) {
		b.sendMessage(chatID, "❌ You are not authorized.", nil)
		return
	}

	message = strings.TrimSpace(message)
	if message == "" {
		b.sendMessage(chatID, "Usage: /broadcast <message>", nil)
		return
	}

	ids, err := b.service.ListUserIDs(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list users for broadcast: %v", err)
		b.sendMessage(chatID, "Failed to load users.", nil)
		return
	}

	for _, id := range ids {
		if err := b.Notify(id, message); err != nil {
			b.logger.Errorf("Broadcast error to %d: %v", id, err)
		}
	}

	b.sendMessage(chatID, "✅ Broadcast sent.", nil)
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	if !b.config.IsAdmin(userID) {
		b.sendMessage(chatID, "❌ You are not authorized.", nil)
		return
	}

	stats, err := b.service.Stats(ctx)
	if err != nil {
		b.logger.Errorf("Failed to collect stats: %v", err)
		b.sendMessage(chatID, "Failed to collect stats.", nil)
		return
	}

	msg := fmt.Sprintf(
		"📊 %s Stats\n"+
			"👥 Total Users: %d\n"+
			"🎁 Tokens Distributed: %d %s\n"+
			"🔗 Total Referrals: %d\n"+
			"💵 Total USDT Purchases: %s\n"+
			"🎟️ Total Presale Tokens: %d %s",
		b.config.TokenName,
		stats.TotalUsers,
		stats.TotalBalance, b.config.TokenSymbol,
		stats.TotalReferrals,
		stats.TotalUSDT,
		stats.TotalTokensSold, b.config.TokenSymbol,
	)
	b.sendMessage(chatID, msg, nil)
}
