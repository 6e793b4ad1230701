package contextx

import (
	"context"
	"fmt"
)

// ChatID identifies the Telegram chat a bot update came from.
type ChatID int64

type contextKeyChatID struct{}

func (c ChatID) Int64() int64 {
	return int64(c)
}

func WithChatID(ctx context.Context, chatID ChatID) context.Context {
	return context.WithValue(ctx, contextKeyChatID{}, chatID)
}

func ChatIDFromContext(ctx context.Context) (ChatID, error) {
	chatID, ok := ctx.Value(contextKeyChatID{}).(ChatID)
	if !ok {
		return 0, fmt.Errorf("chat id: %w", ErrNoValue)
	}

	return chatID, nil
}
