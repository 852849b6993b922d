package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense_tracker_bot/internal/ledger"
	"expense_tracker_bot/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())

	log.Debug().
		Int64("user_id", message.From.ID).
		Str("command", command).
		Str("args", args).
		Msg("Handling command")

	switch command {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(ctx, message)
	case "day":
		b.handleSummary(ctx, message, report.Day, args)
	case "week":
		b.handleSummary(ctx, message, report.Week, args)
	case "month":
		b.handleSummary(ctx, message, report.Month, args)
	case "setdivider":
		b.handleSetDivider(ctx, message, args)
	case "addcat":
		b.handleAddCategory(ctx, message, args)
	case "removecat":
		b.handleRemoveCategory(ctx, message, args)
	case "editcat":
		b.handleRenameCategory(ctx, message, args)
	case "categories":
		b.handleCategories(ctx, message)
	default:
		b.reply(ctx, message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	divider := b.dividerSymbol()
	text := fmt.Sprintf(`Hi %s! I am your personal expense tracker bot. I record your spendings in a Google Sheet.

Main functions:
- Track expenses: send messages like Item%sPrice (e.g. Coffee%s10).
- Spending reports: summaries for today, this week, or this month.
- Category management: organize expenses by categories.
- Customizable divider: set your preferred divider symbol (default is %s).

Use /help or the bot menu button for the full command list.`,
		message.From.FirstName, divider, divider, defaultDivider)

	b.reply(ctx, message.Chat.ID, text)
}

func (b *Bot) handleHelp(ctx context.Context, message *tgbotapi.Message) {
	divider := b.dividerSymbol()
	text := fmt.Sprintf(`Expense tracker bot commands:

/day [category] - Get spending for today, optionally filtered by category
/week [category] - Get spending for this week
/month [category] - Get spending for this month
/setdivider [symbol] - Set the divider symbol for price (default is %s)
/addcat [category name] - Add a new spending category
/removecat [category name] - Remove a spending category
/editcat [old category] [new category] - Rename a spending category
/categories - Show category buttons to apply a category to your next expense
/help - Display this help message

To track an expense, send a message in the form Item%sPrice (e.g. Coffee %s10).`,
		defaultDivider, divider, divider)

	b.reply(ctx, message.Chat.ID, text)
}

func (b *Bot) handleSummary(ctx context.Context, message *tgbotapi.Message, period report.Period, category string) {
	expenses, err := b.store.All(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch ledger for summary")
		b.reply(ctx, message.Chat.ID, "Error fetching data. Please try again later.")
		return
	}

	summary := report.Summarize(expenses, period, report.Options{
		Category: category,
		Divider:  b.dividerSymbol(),
	}, time.Now())

	b.reply(ctx, message.Chat.ID, summary)
}

func (b *Bot) handleSetDivider(ctx context.Context, message *tgbotapi.Message, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.reply(ctx, message.Chat.ID, "Please provide a divider symbol. For example: /setdivider #")
		return
	}
	symbol := fields[0]

	if err := b.setDivider(symbol); err != nil {
		b.reply(ctx, message.Chat.ID, "Divider symbol must be a single character.")
		return
	}

	b.reply(ctx, message.Chat.ID, fmt.Sprintf("Divider symbol set to: %s", symbol))
}

func (b *Bot) handleAddCategory(ctx context.Context, message *tgbotapi.Message, name string) {
	if name == "" {
		b.reply(ctx, message.Chat.ID, "Please provide a category name to add. Example: /addcat Groceries")
		return
	}

	err := b.store.AddCategory(ctx, name)
	switch {
	case errors.Is(err, ledger.ErrCategoryExists):
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' already exists.", name))
	case err != nil:
		log.Error().Err(err).Str("category", name).Msg("Failed to add category")
		b.reply(ctx, message.Chat.ID, "An error occurred. Please try again.")
	default:
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' added.", name))
	}
}

func (b *Bot) handleRemoveCategory(ctx context.Context, message *tgbotapi.Message, name string) {
	if name == "" {
		b.reply(ctx, message.Chat.ID, "Please provide a category name to remove. Example: /removecat Groceries")
		return
	}

	err := b.store.RemoveCategory(ctx, name)
	switch {
	case errors.Is(err, ledger.ErrCategoryNotFound):
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' not found.", name))
	case err != nil:
		log.Error().Err(err).Str("category", name).Msg("Failed to remove category")
		b.reply(ctx, message.Chat.ID, "An error occurred. Please try again.")
	default:
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' removed.", name))
	}
}

func (b *Bot) handleRenameCategory(ctx context.Context, message *tgbotapi.Message, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.reply(ctx, message.Chat.ID, "Please provide the old and new category names. Example: /editcat OldCategory NewCategory")
		return
	}
	oldName := fields[0]
	newName := strings.Join(fields[1:], " ")

	err := b.store.RenameCategory(ctx, oldName, newName)
	switch {
	case errors.Is(err, ledger.ErrCategoryNotFound):
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' not found.", oldName))
	case err != nil:
		log.Error().Err(err).Str("old", oldName).Str("new", newName).Msg("Failed to rename category")
		b.reply(ctx, message.Chat.ID, "An error occurred. Please try again.")
	default:
		b.reply(ctx, message.Chat.ID, fmt.Sprintf("Category '%s' updated to '%s'.", oldName, newName))
	}
}

func (b *Bot) handleCategories(ctx context.Context, message *tgbotapi.Message) {
	categories, err := b.store.Categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch categories")
		b.reply(ctx, message.Chat.ID, "Error fetching categories. Please try again later.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Choose a category for your expense:")
	msg.ReplyMarkup = categoryKeyboard(categories)
	b.send(ctx, msg)
}

func (b *Bot) handleExpense(ctx context.Context, message *tgbotapi.Message) {
	divider := b.dividerSymbol()

	item, price, err := ParseExpense(message.Text, divider)
	if err != nil {
		log.Debug().Err(err).Str("text", message.Text).Msg("Expense message failed to parse")
		b.reply(ctx, message.Chat.ID, fmt.Sprintf(
			"Incorrect format. Please use: Item%sPrice (e.g. Coffee %s10)", divider, divider))
		return
	}

	category := b.takePendingCategory(message.From.ID)

	if err := b.store.Append(ctx, item, price, category); err != nil {
		log.Error().Err(err).Str("item", item).Msg("Failed to record expense")
		b.reply(ctx, message.Chat.ID, "An error occurred. Please try again.")
		return
	}

	confirmation := fmt.Sprintf("Expense tracked: %s - %.2f%s", item, price, divider)
	if category != "" {
		confirmation += fmt.Sprintf(" in category '%s'", category)
	}
	b.reply(ctx, message.Chat.ID, confirmation)

	b.notifier.NotifyExpense(ctx, item, price, category, divider)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Debug().Err(err).Msg("Failed to answer callback query")
	}

	if query.From == nil || query.Message == nil {
		return
	}

	if !b.authorized(query.From.ID) {
		log.Warn().Int64("user_id", query.From.ID).Msg("Unauthorized callback rejected")
		return
	}

	category, ok := categoryFromCallback(query.Data)
	if !ok {
		log.Debug().Str("data", query.Data).Msg("Ignoring unknown callback data")
		return
	}

	b.setPendingCategory(query.From.ID, category)

	display := category
	if display == "" {
		display = "No Category"
	}
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
		fmt.Sprintf("Category '%s' selected. Now send your expense (e.g. Item%sPrice).",
			display, b.dividerSymbol()))
	b.send(ctx, edit)
}
