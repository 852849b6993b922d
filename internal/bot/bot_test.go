package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"expense_tracker_bot/internal/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// newTestBot wires a Bot to a fake Telegram API server. sendMessage calls are
// routed through handler; getMe is answered so the client constructor works.
func newTestBot(t *testing.T, handler http.HandlerFunc) (*Bot, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"test","username":"test_bot"}}`)
			return
		}
		handler(w, r)
	}))

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("testtoken", server.URL+"/bot%s/%s")
	if err != nil {
		server.Close()
		t.Fatalf("Failed to build bot client against fake server: %v", err)
	}

	b := New(api, nil, nil, []int64{42})
	b.resilience.TelegramSend = retry.Config{
		MaxRetries: 3,
		BaseDelay:  5 * time.Millisecond,
		MaxDelay:   20 * time.Millisecond,
		Timeout:    time.Second,
	}
	return b, server
}

func TestReplyRetriesTransientSendFailures(t *testing.T) {
	var calls int32
	b, server := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"boom"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1},"date":1,"text":"hi"}}`)
	})
	defer server.Close()

	b.reply(context.Background(), 1, "hi")

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 send attempts, got %d", got)
	}
}

func TestSetDividerCommandUsesFirstToken(t *testing.T) {
	b, server := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":1},"date":1,"text":"ok"}}`)
	})
	defer server.Close()

	message := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 42},
	}

	b.handleSetDivider(context.Background(), message, "# extra")
	if got := b.dividerSymbol(); got != "#" {
		t.Errorf("Expected divider # from first token, got %q", got)
	}

	// Whitespace-only arguments leave the divider untouched
	b.handleSetDivider(context.Background(), message, "   ")
	if got := b.dividerSymbol(); got != "#" {
		t.Errorf("Expected divider unchanged, got %q", got)
	}
}

func TestAuthorized(t *testing.T) {
	b := New(nil, nil, nil, []int64{42, 1001})

	if !b.authorized(42) {
		t.Error("Expected user 42 to be authorized")
	}
	if b.authorized(7) {
		t.Error("Expected user 7 to be rejected")
	}
}

func TestAuthorizedEmptyWhitelist(t *testing.T) {
	b := New(nil, nil, nil, nil)

	if b.authorized(42) {
		t.Error("Empty whitelist must reject everyone")
	}
}

func TestSetDivider(t *testing.T) {
	b := New(nil, nil, nil, nil)

	if got := b.dividerSymbol(); got != "$" {
		t.Errorf("Expected default divider $, got %q", got)
	}

	if err := b.setDivider("#"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := b.dividerSymbol(); got != "#" {
		t.Errorf("Expected #, got %q", got)
	}

	// Multi-byte but single-rune symbols are fine
	if err := b.setDivider("€"); err != nil {
		t.Errorf("Expected single rune € to be accepted, got %v", err)
	}

	if err := b.setDivider("##"); err == nil {
		t.Error("Expected error for multi-character divider")
	}
	if err := b.setDivider(""); err == nil {
		t.Error("Expected error for empty divider")
	}
}

func TestPendingCategoryAppliesOnce(t *testing.T) {
	b := New(nil, nil, nil, nil)

	b.setPendingCategory(42, "Groceries")
	if got := b.takePendingCategory(42); got != "Groceries" {
		t.Errorf("Expected Groceries, got %q", got)
	}
	if got := b.takePendingCategory(42); got != "" {
		t.Errorf("Expected category cleared after use, got %q", got)
	}
}

func TestPendingCategoryNoCategoryClears(t *testing.T) {
	b := New(nil, nil, nil, nil)

	b.setPendingCategory(42, "Groceries")
	b.setPendingCategory(42, "")
	if got := b.takePendingCategory(42); got != "" {
		t.Errorf("Expected no pending category, got %q", got)
	}
}

func TestCategoryKeyboardLayout(t *testing.T) {
	keyboard := categoryKeyboard([]string{"A", "B", "C", "D"})

	// 4 categories -> one full row of 3, one row of 1, plus No Category row
	if len(keyboard.InlineKeyboard) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(keyboard.InlineKeyboard))
	}
	if len(keyboard.InlineKeyboard[0]) != 3 {
		t.Errorf("Expected 3 buttons in first row, got %d", len(keyboard.InlineKeyboard[0]))
	}
	if len(keyboard.InlineKeyboard[1]) != 1 {
		t.Errorf("Expected 1 button in second row, got %d", len(keyboard.InlineKeyboard[1]))
	}

	last := keyboard.InlineKeyboard[2]
	if len(last) != 1 || last[0].Text != "No Category" {
		t.Errorf("Expected trailing No Category row, got %+v", last)
	}
}

func TestCategoryKeyboardEmpty(t *testing.T) {
	keyboard := categoryKeyboard(nil)

	if len(keyboard.InlineKeyboard) != 1 {
		t.Fatalf("Expected only the No Category row, got %d rows", len(keyboard.InlineKeyboard))
	}
}

func TestCategoryFromCallback(t *testing.T) {
	name, ok := categoryFromCallback("set_cat_Groceries")
	if !ok || name != "Groceries" {
		t.Errorf("Expected Groceries, got %q (ok=%v)", name, ok)
	}

	name, ok = categoryFromCallback("set_cat_None")
	if !ok || name != "" {
		t.Errorf("Expected empty name for No Category, got %q (ok=%v)", name, ok)
	}

	if _, ok := categoryFromCallback("something_else"); ok {
		t.Error("Expected unknown callback data to be rejected")
	}
}

func TestCategoryKeyboardCallbackData(t *testing.T) {
	keyboard := categoryKeyboard([]string{"Eating Out"})

	button := keyboard.InlineKeyboard[0][0]
	if button.CallbackData == nil || *button.CallbackData != "set_cat_Eating Out" {
		t.Errorf("Unexpected callback data %+v", button.CallbackData)
	}

	name, ok := categoryFromCallback(*button.CallbackData)
	if !ok || name != "Eating Out" {
		t.Errorf("Round trip failed: %q (ok=%v)", name, ok)
	}
}
