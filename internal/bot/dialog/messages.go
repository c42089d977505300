package dialog

const (
	MsgExpectDuration  = "Ok, now write time duration."
	MsgExpectTime      = "Ok, now write the time of event"
	MsgExpectDate      = "Ok, now choose date"
	MsgExpectText      = "Now write event message"
	MsgBadHour         = "Incorrect format, expect number of hours"
	MsgBadMinute       = "Incorrect format, expect number of minute"
	MsgBadKeyboard     = "Incorrect keyboard format"
	MsgNotNumber       = "You should write number. Operation aborted."
	MsgOutOfLimit      = "Number is out of limit. Operation aborted."
	MsgDone            = "Done."
	MsgNoActive        = "No current active event"
	MsgNoRepeating     = "No current rep event"
	MsgRepeatingHeader = "Here is yout rep events list. Choose witch to delete:\n"
	MsgPastEvent       = "Event time is in the past. Is it right?"
	MsgInternalFailure = "Internal logic failed"
	MsgGreeting        = "Hello! ^_^\nType /help"
)

const MainHelp = `
Remu - бот для напоминания о ваших событиях. Событие - это просто текст, который Remu напишет вам в заданное время.
В данный момент есть 2 типа событий: единичные и повторяющиеся.

*Единичные события* можно установить двумя способами: указав *ВО* сколько или *ЧЕРЕЗ* сколько событие должно произойти. Как это указать? Проще понять на примерах.

Пример для *во* сколько:
` + "```" + `
10-11 at 12.30 ололо - 10 ноября в 12.30
10 at 11 траляля - 10 числа этого месяца в 11.00
в 9.35 трюлюлю  - сегодня в 9.35
в 22 ohaha - сегодня в 10 вечера
` + "```" + `
Пример для *через* сколько:
` + "```" + `
1d2h3m4s text1  - 1 день, 2 часа, 3 мин., 4 сек.
1д2ч3м4с текст2 - тоже, но на русском
2ч30м text3     - 2 часа 30 мин.
1с text4        - 1 секунда
` + "```" + `
Подробнее о синтаксисе и командах: /help more
`

const DetailedHelp = `
*Синтаксис единичных событий*

<день>-<месяц>-<год> [at|в] <час>.<минута> <текст события>
Обязательны только частица at (или в), час и текст. Пропущенные день, месяц и год берутся из текущей даты, минуты по умолчанию 0.

<>d<>h<>m<>s <текст события>
В <> стоит число дней (d), часов (h), минут (m) и секунд (s). Русские буквы (д, ч, м, с) тоже подходят. Достаточно одного ненулевого поля.

*Повторяющиеся события* задаются начальным временем и периодом:
` + "```" + `
rep 23-12 11.30 7d позвони маме
` + "```" + `
Каждую неделю в 11.30, начиная с 23 декабря.

*Команды*
/list - ближайшие активные события
/at - выбрать дату и время через календарь
/delete_rep - удалить повторяющееся событие
/help - краткая справка

Если текст не удалось разобрать, бот предложит кнопки: выбрать время через календарь, указать длительность или одну из готовых задержек.
`
