package transport

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"timechart/core/logger"
	"timechart/modules/bot/service"
)

// TelegramSender renders OutgoingMessage to the Bot API. Keyboard rows become
// a one-time reply keyboard with a trailing Cancel button; a message without
// a keyboard removes any previous one.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Send(msg service.OutgoingMessage) error {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if len(msg.Keyboard) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.Keyboard)+1)
		for _, row := range msg.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Cancel")))

		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.OneTimeKeyboard = true
		out.ReplyMarkup = keyboard
	} else {
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	_, err := s.api.Send(out)
	return err
}

// Poller long-polls the Bot API and feeds text messages to the conversation
// machine. Dispatching from the single receive loop keeps each user's
// updates in receipt order; the machine fans out across users.
type Poller struct {
	api          *tgbotapi.BotAPI
	conversation *service.ConversationService
}

func NewPoller(api *tgbotapi.BotAPI, conversation *service.ConversationService) *Poller {
	return &Poller{api: api, conversation: conversation}
}

func (p *Poller) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := p.api.GetUpdatesChan(cfg)

	logger.Info("Poller:Run:Started", "bot", p.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			message := update.Message
			if message == nil || message.From == nil || message.Text == "" {
				continue
			}
			incoming := service.Incoming{
				UserID:    message.From.ID,
				ChatID:    message.Chat.ID,
				NickName:  message.From.UserName,
				FirstName: message.From.FirstName,
				LastName:  message.From.LastName,
				Text:      message.Text,
			}
			p.conversation.Dispatch(ctx, incoming)
		}
	}
}
