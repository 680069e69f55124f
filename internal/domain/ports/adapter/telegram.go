package adapter

import "context"

// TelegramBotAdapter is the outbound side of the bot used by background components.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, png []byte, caption string) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
}
