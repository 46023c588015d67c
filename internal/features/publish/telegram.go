package publish

// Telegram delivery of rendered charts
// Sends the PNG as a photo with an HTML caption
// Every send waits on a rate limiter, runs inside a circuit breaker and is retried on 429/5xx

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"strings"
	"time"
	"unicode/utf16"

	"econchart/internal/infra/fs"
	logging "econchart/internal/infra/log"
	"econchart/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Telegram rejects photo captions whose text, after entity parsing, is longer than this.
const maxCaptionLength = 1024

// Sender is the part of *tgbotapi.BotAPI the publisher needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options tunes delivery. Zero values fall back to DefaultOptions.
type Options struct {
	RatePerSecond float64
	Burst         int
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	FileWait      time.Duration // how long to wait for the chart file to appear
}

func DefaultOptions() Options {
	return Options{
		RatePerSecond: 1,
		Burst:         3,
		MaxRetries:    3,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      30 * time.Second,
		FileWait:      5 * time.Second,
	}
}

// TelegramPublisher posts chart images to one chat
type TelegramPublisher struct {
	sender         Sender
	chatID         int64
	opts           Options
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewBotSender logs in to the Bot API with token
func NewBotSender(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

func NewTelegramPublisher(sender Sender, chatID int64, opts Options) *TelegramPublisher {
	def := DefaultOptions()
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = def.RatePerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = def.BaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = def.MaxDelay
	}
	if opts.FileWait <= 0 {
		opts.FileWait = def.FileWait
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TelegramPublish",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.LogWarn("Circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &TelegramPublisher{
		sender:         sender,
		chatID:         chatID,
		opts:           opts,
		rateLimiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		circuitBreaker: circuitBreaker,
	}
}

// Publish uploads the image at path with caption (HTML parse mode, see Caption)
func (p *TelegramPublisher) Publish(ctx context.Context, path, caption string) error {
	start := time.Now()

	if err := fs.WaitForFile(ctx, path, p.opts.FileWait); err != nil {
		return fmt.Errorf("chart file not ready: %w", err)
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	retryOpts := retry.Options{MaxRetries: p.opts.MaxRetries, BaseDelay: p.opts.BaseDelay, MaxDelay: p.opts.MaxDelay}
	err := retry.Do(ctx, retryOpts, func() error {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			msg, err := p.sender.Send(photo)
			if err != nil {
				return nil, classify(err)
			}
			return msg, nil
		})
		return err
	})
	if err != nil {
		logging.LogError("Failed to send chart to Telegram",
			zap.Int64("chat_id", p.chatID), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to send chart: %w", err)
	}

	logging.LogSuccess("Chart sent to Telegram",
		zap.Int64("chat_id", p.chatID),
		zap.String("path", path),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Caption builds the HTML caption for a chart: bold title, subtitle, italic source.
// The visible text is cut to Telegram's limit before escaping, so markup stays well formed.
func Caption(title, subtitle, source string) string {
	budget := maxCaptionLength
	var parts []string
	for _, part := range []struct{ text, open, close string }{
		{title, "<b>", "</b>"},
		{subtitle, "", ""},
		{source, "<i>", "</i>"},
	} {
		if part.text == "" || budget <= 0 {
			continue
		}
		if len(parts) > 0 {
			budget-- // newline separator
		}
		text, used := truncateText(part.text, budget)
		if used == 0 {
			break
		}
		budget -= used
		parts = append(parts, part.open+html.EscapeString(text)+part.close)
	}
	return strings.Join(parts, "\n")
}

// truncateText cuts s to at most limit UTF-16 units, the unit Telegram counts in, ending with
// an ellipsis when cut. It returns the text and its length.
func truncateText(s string, limit int) (string, int) {
	total := 0
	for _, r := range s {
		total += utf16.RuneLen(r)
	}
	if total <= limit {
		return s, total
	}
	if limit <= 0 {
		return "", 0
	}

	used := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if used+w > limit-1 {
			return s[:i] + "…", used + 1
		}
		used += w
	}
	return s, used
}

// classify maps Bot API and network failures to retry.StatusError so the retry loop can judge them
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return statusFromAPI(*apiErr, err)
	}
	var apiVal tgbotapi.Error
	if errors.As(err, &apiVal) {
		return statusFromAPI(apiVal, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &retry.StatusError{StatusCode: 503, Message: netErr.Error(), Err: err}
	}
	return err
}

func statusFromAPI(e tgbotapi.Error, cause error) error {
	return &retry.StatusError{
		StatusCode: e.Code,
		Message:    e.Message,
		RetryAfter: time.Duration(e.RetryAfter) * time.Second,
		Err:        cause,
	}
}
