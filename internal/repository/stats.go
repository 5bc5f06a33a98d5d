package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magiccarpet/presale_bot/internal/models"
	"github.com/shopspring/decimal"
)

func (r *Repository) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var totalBalance sql.NullInt64
	if err := db.Model(&models.User{}).
		Select("SUM(balance)").Scan(&totalBalance).Error; err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	stats.TotalBalance = totalBalance.Int64

	if err := db.Model(&models.User{}).
		Where("referrer_id IS NOT NULL").
		Count(&stats.TotalReferrals).Error; err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	var totalUSDT sql.NullString
	if err := db.Model(&models.Payment{}).
		Select("SUM(external_amount)").Scan(&totalUSDT).Error; err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	if totalUSDT.Valid {
		parsed, err := decimal.NewFromString(totalUSDT.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment sum %q: %w", totalUSDT.String, err)
		}
		stats.TotalUSDT = parsed
	}

	var totalTokens sql.NullInt64
	if err := db.Model(&models.Payment{}).
		Select("SUM(tokens_credited)").Scan(&totalTokens).Error; err != nil {
		return nil, fmt.Errorf("failed to sum tokens sold: %w", err)
	}
	stats.TotalTokensSold = totalTokens.Int64

	return &stats, nil
}

// SumCredits returns the total of all audit rows. Conservation holds when it
// equals the sum of user balances.
func (r *Repository) SumCredits(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}
	return total.Int64, nil
}
