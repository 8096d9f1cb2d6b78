package keychain

import "github.com/zalando/go-keyring"

const serviceName = "leadwatch"

// TokenAccount is the keychain account under which the Telegram bot token
// may be stored as an alternative to the TELEGRAM_TOKEN environment variable.
const TokenAccount = "telegram-token"

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}
