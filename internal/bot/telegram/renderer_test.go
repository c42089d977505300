package telegram_test

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/telegram"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

func TestRenderer_Render(t *testing.T) {
	bot := &fakeBot{}
	renderer := telegram.NewRenderer(telegram.NewClient(bot, testLogger()), testLogger())

	replyTo := 10
	calendarMsg := 11

	err := renderer.Render(engine.Outbound{
		UID:     1,
		ChatID:  100,
		ReplyTo: &replyTo,
		Commands: []models.UICommand{
			models.SendText("I'll remind you today at 03:01\ntest"),
			models.ShowKeyboard(models.KeyboardMain, "water"),
			models.ShowCalendar(models.CalendarView{Year: 2025, Month: time.March, Message: "Ok, now choose date", MsgID: &calendarMsg}),
			models.ShowCalendar(models.CalendarView{Year: 2025, Month: time.April, Message: "Ok, now choose date"}),
			models.DeleteKeyboard(12),
			models.DeleteMessage(13),
		},
	})
	require.NoError(t, err)
	require.Len(t, bot.calls, 6)

	send, ok := bot.calls[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(100), send.ChatID)
	assert.Equal(t, 10, send.ReplyToMessageID)
	assert.Nil(t, send.ReplyMarkup)

	keyboard, ok := bot.calls[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "water", keyboard.Text)
	assert.Zero(t, keyboard.ReplyToMessageID)
	assert.Equal(t, telegram.MainKeyboard(), keyboard.ReplyMarkup)

	edit, ok := bot.calls[2].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 11, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, "March 2025", edit.ReplyMarkup.InlineKeyboard[0][0].Text)

	fresh, ok := bot.calls[3].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "Ok, now choose date", fresh.Text)

	strip, ok := bot.calls[4].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	assert.Equal(t, 12, strip.MessageID)
	require.NotNil(t, strip.ReplyMarkup)
	assert.Empty(t, strip.ReplyMarkup.InlineKeyboard)

	deleted, ok := bot.calls[5].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, 13, deleted.MessageID)
}

func TestRenderer_StopsOnFirstError(t *testing.T) {
	bot := &fakeBot{failAt: 1}
	renderer := telegram.NewRenderer(telegram.NewClient(bot, testLogger()), testLogger())

	err := renderer.Render(engine.Outbound{
		ChatID: 100,
		Commands: []models.UICommand{
			models.SendText("first"),
			models.SendText("second"),
		},
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, bot.calls, 1)
}

func TestRenderer_UnknownKeyboard(t *testing.T) {
	renderer := telegram.NewRenderer(telegram.NewClient(&fakeBot{}, testLogger()), testLogger())

	err := renderer.Render(engine.Outbound{
		Commands: []models.UICommand{models.ShowKeyboard("weekday", "text")},
	})

	assert.Error(t, err)
}
