package telegram_test

import (
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeBot struct {
	calls  []tgbotapi.Chattable
	failAt int
	update tgbotapi.UpdateConfig

	onUpdates func()
	updates   []tgbotapi.Update
}

func (b *fakeBot) record(c tgbotapi.Chattable) error {
	b.calls = append(b.calls, c)
	if b.failAt == len(b.calls) {
		return assert.AnError
	}

	return nil
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return tgbotapi.Message{MessageID: len(b.calls) + 1}, b.record(c)
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, b.record(c)
}

func (b *fakeBot) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	b.update = config

	if b.onUpdates != nil {
		b.onUpdates()
	}

	return b.updates, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func callbacks(markup tgbotapi.InlineKeyboardMarkup) [][]string {
	rows := make([][]string, 0, len(markup.InlineKeyboard))

	for _, row := range markup.InlineKeyboard {
		data := make([]string, 0, len(row))
		for _, btn := range row {
			data = append(data, *btn.CallbackData)
		}

		rows = append(rows, data)
	}

	return rows
}
