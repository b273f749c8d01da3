// Package telegram provides a client for sending valuation summaries via Telegram Bot API.
// It formats a completed MBS valuation into a MarkdownV2 message and handles
// delivery with retry logic for reliability.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/mbsanalysis/internal/analysis"
	"github.com/rewired-gh/mbsanalysis/internal/logger"
	"github.com/rewired-gh/mbsanalysis/internal/report"
)

// sender is the part of tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// SendResult sends the summary of a completed valuation
func (c *Client) SendResult(r *analysis.Result) error {
	return c.send(formatResult(r))
}

// SendError reports a failed valuation
func (c *Client) SendError(err error) error {
	return c.send(formatError(err))
}

func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Debug("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatResult formats a valuation into a Telegram message
func formatResult(r *analysis.Result) string {
	var b strings.Builder

	b.WriteString("📊 *MBS Valuation*\n\n")
	fmt.Fprintf(&b, "💵 Principal: %s\n", escapeMarkdownV2(report.Currency(r.Input.Principal)))
	fmt.Fprintf(&b, "🏷 Coupon: %s\n", escapeMarkdownV2(fmt.Sprintf("%.2f%%", r.Input.CouponRatePct)))
	fmt.Fprintf(&b, "📅 Term: %s\n", escapeMarkdownV2(fmt.Sprintf("%d months", r.Terms.TermMonths)))
	fmt.Fprintf(&b, "⏩ PSA: %s\n", escapeMarkdownV2(fmt.Sprintf("%g%%", r.Input.PSAPct)))
	fmt.Fprintf(&b, "📉 Discount: %s\n\n", escapeMarkdownV2(fmt.Sprintf("%.2f%%", r.Input.DiscountRatePct)))

	fmt.Fprintf(&b, "⏱ WAL: *%s*\n", escapeMarkdownV2(r.WALLabel()))
	fmt.Fprintf(&b, "💰 Price: *%s*\n", escapeMarkdownV2(report.Currency(r.Metrics.Price)))
	if payoff := r.Schedule.PayoffMonth(); payoff > 0 {
		fmt.Fprintf(&b, "🏁 Retired: month %d\n", payoff)
	}

	fmt.Fprintf(&b, "\n🆔 `%s`", escapeMarkdownV2(r.ID))
	return b.String()
}

// formatError formats a failure notification
func formatError(err error) string {
	return fmt.Sprintf("⚠️ *MBS valuation failed*\n\n%s", escapeMarkdownV2(err.Error()))
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
