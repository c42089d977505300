package telegram_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/bot/telegram"
)

func TestMainKeyboard(t *testing.T) {
	assert.Equal(t, [][]string{
		{"at", "after"},
		{"5m", "30m", "1h"},
		{"3h", "1d", "Ok"},
	}, callbacks(telegram.MainKeyboard()))
}

func TestHourKeyboard(t *testing.T) {
	rows := callbacks(telegram.HourKeyboard())
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"time_hour:0", "time_hour:3", "time_hour:6", "time_hour:9",
		"time_hour:12", "time_hour:15", "time_hour:18", "time_hour:21",
	}, rows[0])
	assert.Equal(t, "time_hour:1", rows[1][0])
	assert.Equal(t, "time_hour:23", rows[2][7])
}

func TestMinuteKeyboard(t *testing.T) {
	assert.Equal(t, [][]string{
		{"time_minute:00", "time_minute:15", "time_minute:30", "time_minute:45"},
	}, callbacks(telegram.MinuteKeyboard()))
}

func TestCalendarKeyboard(t *testing.T) {
	markup := telegram.CalendarKeyboard(2025, time.October)
	rows := callbacks(markup)

	require.Len(t, rows, 7)
	assert.Equal(t, "October 2025", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, []string{"ignore"}, rows[0])

	assert.Equal(t, []string{
		"ignore", "ignore",
		"calendar-day-1", "calendar-day-2", "calendar-day-3", "calendar-day-4", "calendar-day-5",
	}, rows[1])
	assert.Equal(t, []string{
		"calendar-day-27", "calendar-day-28", "calendar-day-29", "calendar-day-30", "calendar-day-31",
		"ignore", "ignore",
	}, rows[5])
	assert.Equal(t, []string{"previous-month", "today", "tomorrow", "next-month"}, rows[6])

	for _, week := range rows[1:6] {
		assert.Len(t, week, 7)
	}
}

func TestCalendarKeyboard_MonthStartingOnMonday(t *testing.T) {
	rows := callbacks(telegram.CalendarKeyboard(2025, time.September))

	assert.Equal(t, "calendar-day-1", rows[1][0])
	assert.Equal(t, "calendar-day-30", rows[5][1])
}
