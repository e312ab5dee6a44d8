package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/pingwatch/internal/ratelimit"
)

// Dispatcher sends messages with retry and rate limiting. Delivery is best
// effort: failures are logged, never returned.
type Dispatcher struct {
	Logger  *zap.Logger
	Sender  Sender
	ChatID  string
	Token   string
	Retry   RetryPolicy
	Limiter *ratelimit.Limiter

	wg sync.WaitGroup
}

func NewDispatcher(logger *zap.Logger, sender Sender, chatID, token string, limiter *ratelimit.Limiter) *Dispatcher {
	return &Dispatcher{
		Logger:  logger,
		Sender:  sender,
		ChatID:  chatID,
		Token:   token,
		Retry:   DefaultRetry,
		Limiter: limiter,
	}
}

// Send delivers message and returns when delivery succeeded or was given up.
// A message arriving while the chat's rate limit is exhausted is dropped.
func (d *Dispatcher) Send(ctx context.Context, message string) {
	if !d.Limiter.Allow(d.ChatID) {
		d.Logger.Warn("notify_rate_limited", zap.String("chat_id", d.ChatID), zap.Int("len", len(message)))
		return
	}
	err := d.Retry.Do(ctx, func(ctx context.Context) error {
		return d.Sender.Send(ctx, message, d.ChatID, d.Token)
	})
	if err != nil {
		d.Logger.Error("notify_failed", zap.String("chat_id", d.ChatID), zap.Error(err))
		return
	}
	d.Logger.Debug("notify_sent", zap.String("chat_id", d.ChatID), zap.Int("len", len(message)))
}

// Dispatch starts Send in the background. Call Wait to join outstanding sends.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Send(ctx, message)
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
