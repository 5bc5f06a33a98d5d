package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	TelegramID int64  `gorm:"primaryKey" json:"telegram_id"`
	Balance    int64  `gorm:"default:0" json:"balance"`
	Wallet     string `json:"wallet"`

	// ReferrerID is set exactly once at signup and never changes.
	ReferrerID *int64 `gorm:"index" json:"referrer_id,omitempty"`

	// PaymentRef is the memo key a buyer attaches to the USDT transfer so the
	// poller can attribute the payment.
	PaymentRef string `gorm:"uniqueIndex;type:varchar(36)" json:"payment_ref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is the deduplication record for one treasury transfer. Immutable,
// never deleted.
type Payment struct {
	Signature      string          `gorm:"primaryKey" json:"signature"`
	UserID         int64           `gorm:"index" json:"user_id"`
	ExternalAmount decimal.Decimal `gorm:"type:numeric" json:"external_amount"`
	TokensCredited int64           `json:"tokens_credited"`
	CreatedAt      time.Time       `json:"created_at"`
}

const (
	CreditReasonAirdrop        = "airdrop"
	CreditReasonReferralSignup = "referral_signup"
	CreditReasonPurchase       = "purchase"
	CreditReasonReferralBonus  = "referral_bonus"
	CreditReasonAdmin          = "admin"
)

// Credit is an audit row written in the same transaction as every balance
// increment, so sum(users.balance) == sum(credits.amount) holds at all times.
type Credit struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"index" json:"user_id"`
	Amount           int64     `json:"amount"`
	Reason           string    `gorm:"index" json:"reason"`
	PaymentSignature *string   `json:"payment_signature,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreditOp is a single balance increment to apply to a user.
type CreditOp struct {
	UserID int64
	Amount int64
	Reason string
}

type Stats struct {
	TotalUsers      int64           `json:"total_users"`
	TotalBalance    int64           `json:"total_balance"`
	TotalReferrals  int64           `json:"total_referrals"`
	TotalUSDT       decimal.Decimal `json:"total_usdt"`
	TotalTokensSold int64           `json:"total_tokens_sold"`
}
