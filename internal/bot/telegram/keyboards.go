package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

func MainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(dialog.CallbackAt, dialog.CallbackAt),
			button(dialog.CallbackAfter, dialog.CallbackAfter),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("5m", "5m"),
			button("30m", "30m"),
			button("1h", "1h"),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("3h", "3h"),
			button("1d", "1d"),
			button(dialog.CallbackOk, dialog.CallbackOk),
		),
	)
}

// HourKeyboard lays hours 0..23 out in three rows by remainder of 3.
func HourKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 3)

	for row := range rows {
		for hour := row; hour < 24; hour += 3 {
			rows[row] = append(rows[row], button(strconv.Itoa(hour), dialog.CallbackHourPrefix+strconv.Itoa(hour)))
		}
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func MinuteKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(dialog.QuickMinutes))
	for _, minute := range dialog.QuickMinutes {
		row = append(row, button(minute, dialog.CallbackMinutePrefix+minute))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// CalendarKeyboard shows one month with weeks starting on Monday. Cells
// outside the month and the header answer with the ignore callback.
func CalendarKeyboard(year int, month time.Month) tgbotapi.InlineKeyboardMarkup {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7

	rows := [][]tgbotapi.InlineKeyboardButton{
		{button(fmt.Sprintf("%s %d", month, year), dialog.CallbackIgnore)},
	}

	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, button(" ", dialog.CallbackIgnore))
	}

	for day := 1; day <= days; day++ {
		week = append(week, button(strconv.Itoa(day), dialog.CallbackDayPrefix+strconv.Itoa(day)))

		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}

	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, button(" ", dialog.CallbackIgnore))
		}

		rows = append(rows, week)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button("<", dialog.CallbackPrevMonth),
		button(dialog.CallbackToday, dialog.CallbackToday),
		button(dialog.CallbackTomorrow, dialog.CallbackTomorrow),
		button(">", dialog.CallbackNextMonth),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func keyboardFor(kind models.KeyboardKind) (tgbotapi.InlineKeyboardMarkup, error) {
	switch kind {
	case models.KeyboardMain:
		return MainKeyboard(), nil
	case models.KeyboardHour:
		return HourKeyboard(), nil
	case models.KeyboardMinute:
		return MinuteKeyboard(), nil
	default:
		return tgbotapi.InlineKeyboardMarkup{}, fmt.Errorf("неизвестный тип клавиатуры: %s", kind)
	}
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}
