package bot

import (
	"sync"

	"github.com/magiccarpet/presale_bot/config"
	"github.com/magiccarpet/presale_bot/internal/service"
	"github.com/magiccarpet/presale_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API        *tgbotapi.BotAPI
	service    *service.Service
	logger     *utils.Logger
	config     *config.Config
	userStates map[int64]string
	stateMutex *sync.Mutex
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	cfg *config.Config,
	logger *utils.Logger,
) *Bot {
	return &Bot{
		API:        api,
		service:    svc,
		logger:     logger,
		config:     cfg,
		userStates: make(map[int64]string),
		stateMutex: &sync.Mutex{},
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.HandleUpdate(update)
	}
}

func GetMainMenu() tgbotapi.ReplyKeyboardMarkup {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Check Balance")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Buy Presale")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("My Referral Link")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Set Wallet")),
	)
	menu.ResizeKeyboard = true
	return menu
}

// Notify implements the poller's notification boundary. Delivery is
// best-effort; the caller decides what to do with the error.
func (b *Bot) Notify(userID int64, text string) error {
	return b.sendMessage(userID, text, nil)
}

func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message to %d: %v", chatID, err)
		return err
	}
	return nil
}
