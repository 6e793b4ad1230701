package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

const queueSize = 64

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var ErrQueueFull = errors.New("notification queue is full")

// Sender часть API бота, нужная для отправки сообщений.
type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot отправляет в чат уведомления о новых и изменённых отзывах.
// NotifyComment только ставит событие в очередь, отправкой занимается Run.
type TelegramBot struct {
	sender  Sender
	chatID  int64
	events  chan entity.CommentEvent
	startup string
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return New(bot, chatID), nil
}

func New(sender Sender, chatID int64) *TelegramBot {
	return &TelegramBot{
		sender: sender,
		chatID: chatID,
		events: make(chan entity.CommentEvent, queueSize),
	}
}

// WithStartupMessage задаёт текст, который Run отправляет в чат перед разбором очереди.
func (b *TelegramBot) WithStartupMessage(text string) *TelegramBot {
	b.startup = text
	return b
}

func (b *TelegramBot) NotifyComment(_ context.Context, event entity.CommentEvent) error {
	select {
	case b.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run отправляет события из очереди до отмены контекста.
func (b *TelegramBot) Run(ctx context.Context) error {
	if b.startup != "" {
		if err := b.SendText(ctx, b.startup); err != nil {
			logger(ctx).Warn("failed to send startup message", logx.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-b.events:
			if err := b.SendComment(ctx, event); err != nil {
				logger(ctx).Error("failed to send comment notification",
					logx.FieldMarketID, event.MarketID,
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendComment(ctx context.Context, event entity.CommentEvent) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatComment(event),
	).WithParseMode(telego.ModeHTML)

	if _, err := b.sender.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if _, err := b.sender.SendMessage(ctx, tu.Message(tu.ID(b.chatID), text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func FormatComment(event entity.CommentEvent) string {
	title := "💬 <b>Новый отзыв</b>"
	if event.Outcome == "updated" {
		title = "✏️ <b>Отзыв изменён</b>"
	}

	rank := "без оценки"
	if event.Rank.Present() {
		rank = fmt.Sprintf("%d/5", event.Rank.Int())
	}

	text := fmt.Sprintf(
		"%s\n\n"+
			"🏪 <b>Рынок:</b> %s (<code>%d</code>)\n"+
			"👤 <b>Автор:</b> %s\n"+
			"⭐ <b>Оценка:</b> %s",
		title,
		html.EscapeString(event.MarketName),
		event.MarketID,
		html.EscapeString(event.Nickname),
		rank,
	)

	if event.Comment != "" {
		text += "\n\n" + html.EscapeString(event.Comment)
	}

	return text
}
