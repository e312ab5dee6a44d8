package notify

import "context"

//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks github.com/hamed0406/pingwatch/internal/notify Sender

// Sender delivers one text message to a chat.
type Sender interface {
	Send(ctx context.Context, message, chatID, token string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, message, chatID, token string) error

func (f SenderFunc) Send(ctx context.Context, message, chatID, token string) error {
	return f(ctx, message, chatID, token)
}
