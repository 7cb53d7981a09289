package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramMarkup usa HTML: el texto dinamico (direcciones, explicaciones del LLM) puede
// traer _ * o < y se escapa entero.
var telegramMarkup = markup{
	escape: func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeHTML, s) },
	bold:   func(s string) string { return "<b>" + s + "</b>" },
	italic: func(s string) string { return "<i>" + s + "</i>" },
}

// TelegramNotifier envia las alertas a un chat fijo.
type TelegramNotifier struct {
	bot    botSender
	chatID int64
}

// NewTelegramNotifier valida el token contra la API de Telegram.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) NotifyOpportunities(ctx context.Context, a Alert) error {
	return t.send(ctx, formatText(a, telegramMarkup))
}

func (t *TelegramNotifier) NotifySummary(ctx context.Context, s Summary) error {
	return t.send(ctx, formatSummary(s, telegramMarkup))
}

// tgbotapi no acepta contexto; solo se corta antes de enviar.
func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
