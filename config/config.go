package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AdminIDs         string `mapstructure:"ADMIN_IDS"`
	DB_URL           string `mapstructure:"DB_URL"`

	RPC_URL         string `mapstructure:"RPC_URL"`
	TreasuryAddress string `mapstructure:"TREASURY_ADDRESS"`
	USDTMint        string `mapstructure:"USDT_MINT"`

	TokenName   string `mapstructure:"TOKEN_NAME"`
	TokenSymbol string `mapstructure:"TOKEN_SYMBOL"`

	AirdropReward  int64  `mapstructure:"AIRDROP_REWARD"`
	ReferralReward int64  `mapstructure:"REFERRAL_REWARD"`
	BonusRate      string `mapstructure:"REFERRAL_BONUS_RATE"`
	PresaleRate    string `mapstructure:"PRESALE_RATE"`

	PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`

	adminIDs    []int64
	bonusRate   decimal.Decimal
	presaleRate decimal.Decimal
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("TOKEN_NAME", "Magic Carpet")
	viper.SetDefault("TOKEN_SYMBOL", "MAGPET")
	viper.SetDefault("AIRDROP_REWARD", 1000)
	viper.SetDefault("REFERRAL_REWARD", 500)
	viper.SetDefault("REFERRAL_BONUS_RATE", "0.10")
	viper.SetDefault("PRESALE_RATE", "0.00025")
	viper.SetDefault("POLL_INTERVAL", "30s")

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate parses the derived fields (admin ids, rates). LoadConfig calls it;
// hand-built configs must call it before use.
func (c *Config) Validate() error {
	for _, part := range strings.Split(c.AdminIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		c.adminIDs = append(c.adminIDs, id)
	}

	var err error
	if c.bonusRate, err = decimal.NewFromString(c.BonusRate); err != nil {
		return fmt.Errorf("invalid REFERRAL_BONUS_RATE %q: %w", c.BonusRate, err)
	}
	if c.presaleRate, err = decimal.NewFromString(c.PresaleRate); err != nil {
		return fmt.Errorf("invalid PRESALE_RATE %q: %w", c.PresaleRate, err)
	}
	if !c.presaleRate.IsPositive() {
		return fmt.Errorf("PRESALE_RATE must be positive, got %s", c.PresaleRate)
	}

	return nil
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) BonusRateDecimal() decimal.Decimal {
	return c.bonusRate
}

func (c *Config) PresaleRateDecimal() decimal.Decimal {
	return c.presaleRate
}
