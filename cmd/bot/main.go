package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/magiccarpet/presale_bot/config"
	"github.com/magiccarpet/presale_bot/db"
	"github.com/magiccarpet/presale_bot/internal/bot"
	"github.com/magiccarpet/presale_bot/internal/poller"
	"github.com/magiccarpet/presale_bot/internal/repository"
	"github.com/magiccarpet/presale_bot/internal/service"
	"github.com/magiccarpet/presale_bot/internal/solana"
	"github.com/magiccarpet/presale_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	svc := service.NewService(repo, &cfg, logger)

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	presaleBot := bot.NewBot(telegramBot, svc, &cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chainClient := solana.NewClient(cfg.RPC_URL, cfg.TreasuryAddress, cfg.USDTMint, logger)
	paymentPoller := poller.New(poller.Config{
		Client:      chainClient,
		Ledger:      svc,
		Notifier:    presaleBot,
		Interval:    cfg.PollInterval,
		TokenSymbol: cfg.TokenSymbol,
		Logger:      logger,
	})
	go paymentPoller.Run(ctx)

	go func() {
		<-ctx.Done()
		telegramBot.StopReceivingUpdates()
	}()

	presaleBot.Start()
}
