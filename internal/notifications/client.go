package notifications

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config controls the optional ntfy push channel.
type Config struct {
	Enabled  bool
	BaseURL  string
	Topic    string
	Priority string
	// Threshold marks expenses at or above this amount as high priority.
	// Zero disables the threshold.
	Threshold float64
	// Digest batches tracked expenses into one push per DigestInterval
	// instead of one push per expense. Threshold alerts still go out
	// immediately.
	Digest         bool
	DigestInterval time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
}

const defaultDigestInterval = 15 * time.Minute

// ExpenseInfo is one tracked expense queued for a digest push.
type ExpenseInfo struct {
	Item     string
	Price    float64
	Category string
	Divider  string
}

type Client struct {
	httpClient *http.Client
	cfg        Config

	// Circuit breaker state
	mutex       sync.Mutex
	failures    int
	lastFailure time.Time
	circuitOpen bool

	// Digest state
	pending    []ExpenseInfo
	flushTimer *time.Timer

	// Metrics
	totalSent    int64
	totalFailed  int64
	totalRetries int64
}

type NotificationError struct {
	Type       string
	StatusCode int
	Attempt    int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s] attempt %d: %v", e.Type, e.Attempt, e.Underlying)
}

func (e *NotificationError) IsRetryable() bool {
	switch e.Type {
	case "network", "server", "timeout", "rate_limit":
		return true
	case "auth", "client":
		return false
	default:
		return e.StatusCode >= 500
	}
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cfg: cfg,
	}
}

// NotifyExpense pushes a one-line record of a freshly tracked expense.
// Expenses at or above the configured threshold go out immediately as high
// priority; anything else is either pushed right away or queued for the
// next digest, depending on the Digest setting.
func (c *Client) NotifyExpense(ctx context.Context, item string, price float64, category, divider string) {
	if !c.cfg.Enabled {
		return
	}

	if c.cfg.Threshold > 0 && price >= c.cfg.Threshold {
		message := "Large expense!\n" + formatExpenseMessage(item, price, category, divider)
		c.sendAsync(ctx, message, "high")
		return
	}

	if c.cfg.Digest {
		c.queueDigest(ExpenseInfo{Item: item, Price: price, Category: category, Divider: divider})
		return
	}

	c.sendAsync(ctx, formatExpenseMessage(item, price, category, divider), c.cfg.Priority)
}

func (c *Client) queueDigest(info ExpenseInfo) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.pending = append(c.pending, info)

	if c.flushTimer == nil {
		interval := c.cfg.DigestInterval
		if interval <= 0 {
			interval = defaultDigestInterval
		}
		c.flushTimer = time.AfterFunc(interval, func() {
			if err := c.FlushDigest(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Digest notification failed")
			}
		})
	}

	log.Debug().
		Int("queued", len(c.pending)).
		Msg("Expense queued for digest notification")
}

// FlushDigest pushes all queued expenses as one message. Called on the digest
// timer and once more on shutdown so nothing queued is lost.
func (c *Client) FlushDigest(ctx context.Context) error {
	c.mutex.Lock()
	items := c.pending
	c.pending = nil
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
	c.mutex.Unlock()

	if len(items) == 0 {
		return nil
	}

	return c.Send(ctx, formatDigestMessage(items), c.cfg.Priority)
}

const maxDigestItems = 10

func formatDigestMessage(items []ExpenseInfo) string {
	var sb strings.Builder

	if len(items) == 1 {
		sb.WriteString("1 expense tracked\n")
	} else {
		sb.WriteString(fmt.Sprintf("%d expenses tracked\n", len(items)))
	}

	show := len(items)
	if show > maxDigestItems {
		show = maxDigestItems
	}

	for i := 0; i < show; i++ {
		item := items[i]
		if item.Category == "" {
			sb.WriteString(fmt.Sprintf("- %s: %.2f%s\n", item.Item, item.Price, item.Divider))
		} else {
			sb.WriteString(fmt.Sprintf("- %s: %.2f%s (%s)\n", item.Item, item.Price, item.Divider, item.Category))
		}
	}

	if len(items) > maxDigestItems {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxDigestItems))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func formatExpenseMessage(item string, price float64, category, divider string) string {
	if category == "" {
		return fmt.Sprintf("Expense tracked: %s - %.2f%s", item, price, divider)
	}
	return fmt.Sprintf("Expense tracked: %s - %.2f%s (%s)", item, price, divider, category)
}

func (c *Client) sendAsync(ctx context.Context, message, priority string) {
	go func() {
		if err := c.Send(ctx, message, priority); err != nil {
			log.Warn().Err(err).Msg("Async notification failed")
		}
	}()
}

// Send delivers one message with retry, backoff and a circuit breaker that
// opens after five consecutive failures.
func (c *Client) Send(ctx context.Context, message, priority string) error {
	if !c.cfg.Enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	if c.isCircuitOpen() {
		log.Warn().Msg("Circuit breaker open, skipping notification")
		return &NotificationError{
			Type:       "circuit_open",
			Underlying: fmt.Errorf("circuit breaker is open"),
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying notification after delay")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}

			c.mutex.Lock()
			c.totalRetries++
			c.mutex.Unlock()
		}

		err := c.post(ctx, message, priority, attempt+1)
		if err == nil {
			c.recordSuccess()
			return nil
		}

		lastErr = err

		if notifErr, ok := err.(*NotificationError); ok && !notifErr.IsRetryable() {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Msg("Non-retryable error, giving up")
			c.recordFailure()
			return err
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.cfg.MaxRetries).
			Msg("Notification attempt failed")
	}

	c.recordFailure()
	return &NotificationError{
		Type:       "max_retries_exceeded",
		Attempt:    c.cfg.MaxRetries + 1,
		Underlying: lastErr,
	}
}

func (c *Client) post(ctx context.Context, message, priority string, attempt int) error {
	url := fmt.Sprintf("%s/%s", c.cfg.BaseURL, c.cfg.Topic)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Attempt: attempt, Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	if priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Attempt: attempt, Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Attempt:    attempt,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().
		Int("status_code", resp.StatusCode).
		Int("attempt", attempt).
		Msg("Notification sent successfully")

	return nil
}

func (c *Client) isCircuitOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.circuitOpen {
		return false
	}

	// Half-open after a cool-down; next send probes the service
	if time.Since(c.lastFailure) > 30*time.Second {
		c.circuitOpen = false
		c.failures = 0
		log.Info().Msg("Circuit breaker moving to half-open state")
		return false
	}

	return true
}

func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalSent++
	if c.circuitOpen {
		c.circuitOpen = false
		c.failures = 0
		log.Info().Msg("Circuit breaker closed after successful notification")
	}
	c.failures = 0
}

func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalFailed++
	c.failures++
	c.lastFailure = time.Now()

	if c.failures >= 5 && !c.circuitOpen {
		c.circuitOpen = true
		log.Warn().
			Int("failures", c.failures).
			Msg("Circuit breaker opened due to consecutive failures")
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	base := float64(c.cfg.BaseDelay)
	delay := base * math.Pow(2, float64(attempt-1))

	// ±25% jitter
	jitter := rand.Float64()*0.5 - 0.25
	delay = delay * (1 + jitter)

	if ceiling := float64(c.cfg.MaxDelay); delay > ceiling {
		delay = ceiling
	}

	return time.Duration(delay)
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}

// Metrics returns sent/failed/retried counters.
func (c *Client) Metrics() (sent, failed, retries int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSent, c.totalFailed, c.totalRetries
}
