package config

import (
	"time"

	"expense_tracker_bot/internal/retry"
)

type ResilienceConfig struct {
	SheetRead    retry.Config
	SheetWrite   retry.Config
	TelegramSend retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	SheetWrite: retry.Config{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	TelegramSend: retry.Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    10 * time.Second,
	},
}
