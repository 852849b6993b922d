package app

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"expense_tracker_bot/internal/notifications"
	"expense_tracker_bot/internal/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the full runtime configuration, sourced from the environment
// (optionally via a .env file).
type Config struct {
	BotToken        string
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	AllowedUserIDs  []int64
	Ntfy            notifications.Config
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// Load reads and validates the full bot configuration, exiting on anything
// unusable.
func Load() Config {
	rawID := GetRequiredEnv("SPREADSHEET_ID")
	spreadsheetID, err := sheets.SpreadsheetIDFromURL(rawID)
	if err != nil {
		log.Fatal().Err(err).Msg("SPREADSHEET_ID is neither an ID nor a sheet URL")
	}

	return Config{
		BotToken:        GetRequiredEnv("BOT_TOKEN"),
		SpreadsheetID:   spreadsheetID,
		SheetName:       GetEnvWithDefault("SHEET_NAME", "Expenses"),
		CredentialsFile: GetEnvWithDefault("CREDENTIALS_FILE", "credentials.json"),
		AllowedUserIDs:  parseAllowedUserIDs(os.Getenv("ALLOWED_USER_IDS")),
		Ntfy:            loadNtfyConfig(),
	}
}

func loadNtfyConfig() notifications.Config {
	cfg := notifications.Config{
		Enabled:        GetEnvWithDefault("NTFY_ENABLED", "false") == "true",
		BaseURL:        GetEnvWithDefault("NTFY_URL", "https://ntfy.sh"),
		Topic:          GetEnvWithDefault("NTFY_TOPIC", "expense-tracker"),
		Priority:       os.Getenv("NTFY_PRIORITY"),
		Threshold:      parseFloat(os.Getenv("NTFY_ALERT_THRESHOLD")),
		Digest:         GetEnvWithDefault("NTFY_DIGEST", "false") == "true",
		DigestInterval: parseDuration(os.Getenv("NTFY_DIGEST_INTERVAL"), 15*time.Minute),
		MaxRetries:     3,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
	}

	if cfg.Enabled {
		log.Info().
			Str("topic", cfg.Topic).
			Float64("threshold", cfg.Threshold).
			Bool("digest", cfg.Digest).
			Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return cfg
}

// parseAllowedUserIDs reads a comma-separated list of Telegram user IDs.
// Invalid entries are skipped with a warning.
func parseAllowedUserIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("entry", part).Msg("Skipping invalid user ID in ALLOWED_USER_IDS")
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		log.Warn().Msg("ALLOWED_USER_IDS is empty; every user will be rejected")
	}
	return ids
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		log.Warn().Str("value", raw).Msg("Skipping invalid duration value")
		return fallback
	}
	return value
}

func parseFloat(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Skipping invalid numeric value")
		return 0
	}
	return value
}

// GetRequiredEnv fetches a required environment variable or exits if not set.
func GetRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Msgf("%s environment variable is required", key)
	}
	return value
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// InitializeClients creates the Google Sheets client and the Telegram bot API.
func InitializeClients(ctx context.Context, cfg Config) (*sheets.Client, *tgbotapi.BotAPI) {
	log.Debug().Msg("Initializing clients")

	sheetsClient, err := sheets.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheets client")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram bot API client")
	}

	log.Debug().
		Str("bot", botAPI.Self.UserName).
		Str("service_account", sheetsClient.ServiceAccountEmail()).
		Msg("Clients initialized successfully")

	return sheetsClient, botAPI
}
