package bot

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"expense_tracker_bot/internal/config"
	"expense_tracker_bot/internal/ledger"
	"expense_tracker_bot/internal/notifications"
	"expense_tracker_bot/internal/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const defaultDivider = "$"

// Bot ties the Telegram update stream to the sheet-backed ledger.
type Bot struct {
	api        *tgbotapi.BotAPI
	store      *ledger.Store
	notifier   *notifications.Client
	allowed    map[int64]bool
	resilience config.ResilienceConfig

	mu      sync.Mutex
	divider string
	// pending holds a category picked via the inline keyboard, applied to
	// the user's next expense message only.
	pending map[int64]string
}

func New(api *tgbotapi.BotAPI, store *ledger.Store, notifier *notifications.Client, allowedUserIDs []int64) *Bot {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}

	return &Bot{
		api:        api,
		store:      store,
		notifier:   notifier,
		allowed:    allowed,
		resilience: config.DefaultResilienceConfig,
		divider:    defaultDivider,
		pending:    make(map[int64]string),
	}
}

// Run registers the command menu and processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.registerCommands()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Info().Str("bot", b.api.Self.UserName).Msg("Expense tracker bot started, polling for updates")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down update loop")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) registerCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot and show bot description and commands"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help message"},
		tgbotapi.BotCommand{Command: "day", Description: "Get spending for today"},
		tgbotapi.BotCommand{Command: "week", Description: "Get spending for this week"},
		tgbotapi.BotCommand{Command: "month", Description: "Get spending for this month"},
		tgbotapi.BotCommand{Command: "setdivider", Description: "Set divider symbol"},
		tgbotapi.BotCommand{Command: "addcat", Description: "Add category"},
		tgbotapi.BotCommand{Command: "removecat", Description: "Remove category"},
		tgbotapi.BotCommand{Command: "editcat", Description: "Edit category"},
		tgbotapi.BotCommand{Command: "categories", Description: "Show category buttons"},
	)

	if _, err := b.api.Request(commands); err != nil {
		log.Error().Err(err).Msg("Failed to register bot command menu")
		return
	}
	log.Debug().Msg("Bot command menu registered")
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	if !b.authorized(message.From.ID) {
		log.Warn().
			Int64("user_id", message.From.ID).
			Str("text", message.Text).
			Msg("Unauthorized user rejected")
		b.reply(ctx, message.Chat.ID, fmt.Sprintf(
			"Unauthorized access. To get access, ask the bot administrator to add your user ID %d to the ALLOWED_USER_IDS list.",
			message.From.ID))
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Text != "" {
		b.handleExpense(ctx, message)
	}
}

func (b *Bot) authorized(userID int64) bool {
	return b.allowed[userID]
}

// reply sends a plain text message.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// send delivers any outgoing chat payload with retry, logging the failure
// once the budget is spent.
func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	_, err := retry.WithRetry(ctx, b.resilience.TelegramSend, func(ctx context.Context) (tgbotapi.Message, error) {
		return b.api.Send(msg)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send message")
	}
}

func (b *Bot) dividerSymbol() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.divider
}

// setDivider validates and stores a new divider symbol.
func (b *Bot) setDivider(symbol string) error {
	if utf8.RuneCountInString(symbol) != 1 {
		return fmt.Errorf("divider symbol must be a single character")
	}
	b.mu.Lock()
	b.divider = symbol
	b.mu.Unlock()
	return nil
}

func (b *Bot) setPendingCategory(userID int64, category string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if category == "" {
		delete(b.pending, userID)
		return
	}
	b.pending[userID] = category
}

// takePendingCategory returns and clears the user's picked category.
func (b *Bot) takePendingCategory(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	category := b.pending[userID]
	delete(b.pending, userID)
	return category
}
