package dialog

// Callback data attached to inline keyboard buttons.
const (
	CallbackIgnore       = "ignore"
	CallbackOk           = "Ok"
	CallbackAt           = "at"
	CallbackAfter        = "after"
	CallbackNextMonth    = "next-month"
	CallbackPrevMonth    = "previous-month"
	CallbackToday        = "today"
	CallbackTomorrow     = "tomorrow"
	CallbackDayPrefix    = "calendar-day-"
	CallbackHourPrefix   = "time_hour:"
	CallbackMinutePrefix = "time_minute:"
)

// QuickDurations are the duration shortcuts of the main keyboard.
var QuickDurations = []string{"5m", "30m", "1h", "3h", "1d"}

// QuickMinutes are the choices of the minute keyboard.
var QuickMinutes = []string{"00", "15", "30", "45"}
