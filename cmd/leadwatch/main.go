package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"leadwatch/adapters/telegram_receiver"
	"leadwatch/adapters/telegram_sender"
	"leadwatch/core"
	"leadwatch/core/actions"
	"leadwatch/core/ops"
	"leadwatch/core/policy"
	"leadwatch/internal/activity"
	"leadwatch/internal/admin"
	"leadwatch/internal/config"
	"leadwatch/internal/crm/bitrix"
	"leadwatch/internal/leads"
)

const settingsWatchInterval = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "leadwatch",
	Short: "Telegram bot that chases expired CRM leads",
	Long: `leadwatch watches a Bitrix24 CRM for converted leads that have gone
stale and presents them to a manager in Telegram with inline action
buttons. Each button press updates the lead in the CRM: mark it as
called, mark it as written to, or create a follow-up task.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("configuration error", "error", err)
		return err
	}

	settings := config.DefaultSettings()
	if cfg.SettingsPath != "" {
		settings, err = config.LoadSettings(cfg.SettingsPath)
		if err != nil {
			logger.Error("settings file error", "path", cfg.SettingsPath, "error", err)
			return fmt.Errorf("load settings: %w", err)
		}
	}
	store := config.NewStore(settings)

	if cfg.SettingsPath != "" {
		watcher := config.NewWatcher(cfg.SettingsPath, store, settingsWatchInterval, logger)
		go watcher.Run(ctx)
	}

	crmClient := bitrix.NewClient(cfg.BitrixWebhook, logger)
	cache := leads.NewCache()
	service := leads.NewService(crmClient, cache, store, logger)

	var publisher activity.Publisher = activity.NopPublisher{}
	if url := store.Current().AMQPURL; url != "" {
		amqpPub, err := activity.Dial(url)
		if err != nil {
			logger.Error("amqp connect failed, activity feed disabled", "error", err)
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
		}
	}

	sender := telegram_sender.New(cfg.TelegramToken)
	presenter := core.NewPresenter(service, sender, logger)
	actionHandler := actions.NewHandler(service, publisher, logger)

	registry := ops.NewRegistry()
	for _, op := range []ops.Op{
		&ops.StartOp{},
		&ops.LeadsOp{Runner: presenter},
		&ops.StatusOp{Leads: service},
	} {
		if err := registry.Register(op); err != nil {
			return fmt.Errorf("register op: %w", err)
		}
	}
	if err := registry.Register(&ops.HelpOp{Registry: registry}); err != nil {
		return fmt.Errorf("register op: %w", err)
	}

	dispatcher := core.NewDispatcher(
		policy.New(cfg.ManagerChatID), registry, actionHandler, sender, logger)

	scheduler := core.NewScheduler(presenter, store, cfg.ManagerChatID, logger)
	go scheduler.Run(ctx)

	var adminSrv *admin.Server
	if addr := store.Current().AdminAddr; addr != "" {
		adminSrv = admin.NewServer(addr, logger)
		adminSrv.Start()
	}

	logger.Info("leadwatch started", "chat_id", cfg.ManagerChatID)

	var receiver core.Receiver = telegram_receiver.New(
		cfg.TelegramToken, dispatcher.HandleMessage, dispatcher.HandleCallback, logger)
	err = receiver.Start(ctx)

	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adminSrv.Shutdown(shutdownCtx)
	}

	logger.Info("leadwatch stopped")
	return err
}
