package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"leadwatch/internal/keychain"
)

// Env variable names. TELEGRAM_TOKEN, BITRIX_WEBHOOK and MANAGER_CHAT_ID are
// required at startup; everything else lives in the optional settings file.
const (
	EnvTelegramToken = "TELEGRAM_TOKEN"
	EnvBitrixWebhook = "BITRIX_WEBHOOK"
	EnvManagerChatID = "MANAGER_CHAT_ID"
	EnvSettingsPath  = "LEADWATCH_SETTINGS"
)

// Config holds the startup-fatal configuration read from the environment.
type Config struct {
	TelegramToken string
	BitrixWebhook string
	ManagerChatID int64
	SettingsPath  string
}

// FromEnv builds a Config from the process environment. The Telegram token
// falls back to the system keychain when the environment variable is unset.
// Any missing required value is an error; the caller is expected to treat it
// as fatal.
func FromEnv() (*Config, error) {
	cfg := &Config{
		TelegramToken: strings.TrimSpace(os.Getenv(EnvTelegramToken)),
		BitrixWebhook: strings.TrimSpace(os.Getenv(EnvBitrixWebhook)),
		SettingsPath:  strings.TrimSpace(os.Getenv(EnvSettingsPath)),
	}

	if cfg.TelegramToken == "" {
		if token, err := keychain.Get(keychain.TokenAccount); err == nil {
			cfg.TelegramToken = strings.TrimSpace(token)
		}
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("%s is not set and no token found in keychain", EnvTelegramToken)
	}

	if cfg.BitrixWebhook == "" {
		return nil, fmt.Errorf("%s is not set", EnvBitrixWebhook)
	}

	rawChat := strings.TrimSpace(os.Getenv(EnvManagerChatID))
	if rawChat == "" {
		return nil, fmt.Errorf("%s is not set", EnvManagerChatID)
	}
	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid chat ID: %w", EnvManagerChatID, err)
	}
	cfg.ManagerChatID = chatID

	return cfg, nil
}
