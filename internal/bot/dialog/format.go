package dialog

import (
	"fmt"
	"strings"
	"time"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const listTextLimit = 40

// LocalTime shifts an instant into a user's offset, given in hours west of UTC.
// The result carries the shifted wall clock in the UTC location.
func LocalTime(t time.Time, utcOffset int) time.Time {
	return t.UTC().Add(-time.Duration(utcOffset) * time.Hour)
}

// ConfirmationHeader describes when an event fires relative to now in the
// user's local calendar.
func ConfirmationHeader(event, now time.Time, utcOffset int) string {
	localEvent := LocalTime(event, utcOffset)
	localNow := LocalTime(now, utcOffset)

	if localEvent.Before(localNow) {
		return MsgPastEvent
	}

	switch daysBetween(localNow, localEvent) {
	case 0:
		return localEvent.Format("I'll remind you today at 15:04")
	case 1:
		return localEvent.Format("I'll remind you tomorrow at 15:04")
	default:
		return localEvent.Format("I'll remind you January _2 at 15:04")
	}
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	return int(toDay.Sub(fromDay).Hours() / 24)
}

// ListEntry renders an active event as "text : _ 7 Jan  9.05_".
func ListEntry(event *models.ActiveEvent, utcOffset int) string {
	local := LocalTime(event.DueTime, utcOffset)

	return fmt.Sprintf("%s : _%2d %s %2d.%02d_",
		truncate(event.Text, listTextLimit),
		local.Day(), local.Format("Jan"), local.Hour(), local.Minute())
}

func formatActiveList(events []*models.ActiveEvent, utcOffset int) string {
	if len(events) == 0 {
		return MsgNoActive
	}

	var b strings.Builder

	for i, event := range events {
		fmt.Fprintf(&b, "%d) %s\n", i+1, ListEntry(event, utcOffset))
	}

	return b.String()
}

func formatRepeatingList(templates []*models.RepeatingTemplate) string {
	lines := make([]string, 0, len(templates))

	for i, template := range templates {
		lines = append(lines, fmt.Sprintf("%d) %s", i, truncate(template.Text, listTextLimit)))
	}

	return MsgRepeatingHeader + strings.Join(lines, "\n")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}
