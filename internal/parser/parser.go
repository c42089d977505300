package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const (
	momentDayPattern  = `(?:(?P<m_day>\d+))?(?:-(?P<m_month>\d+))?(?:-(?P<m_year>\d+))?`
	momentTimePattern = `(?P<m_hour>\d+)(?:[.:](?P<m_minute>\d+))?`
	durationPattern   = `(?:(?P<d_day>\d*)[DdДд])?(?:(?P<d_hour>\d*)[HhЧч])?` +
		`(?:(?P<d_minute>\d*)[MmМм])?(?:(?P<d_second>\d*)[SsСс])?`
	textPattern = `(?P<main_text>(?s:.*))`

	minYear = 1970
	maxYear = 9999
)

var (
	durationForm = regexp.MustCompile(`^` + durationPattern + ` ` + textPattern)
	momentForm   = regexp.MustCompile(`^` + momentDayPattern + `\s*(?:at|At|в|В)\s*` + momentTimePattern + ` ` + textPattern)
	repeatForm   = regexp.MustCompile(`^rep\s*` + momentDayPattern + `\s+` + momentTimePattern + `\s+` +
		durationPattern + ` ` + textPattern)
)

// Parse turns user text into a Command. Forms are tried in a fixed order:
// duration ("1h30m text"), absolute moment ("24-10 at 18.30 text") and
// repeating ("rep 23-12 11.30 7d text"). utcOffset is in hours west of UTC.
func Parse(text string, now time.Time, utcOffset int) (models.Command, error) {
	line := strings.TrimSpace(text)

	if cmd, ok := parseDuration(line, now); ok {
		return cmd, nil
	}

	if cmd, ok := parseMoment(line, now, utcOffset); ok {
		return cmd, nil
	}

	if cmd, ok := parseRepeating(line, now, utcOffset); ok {
		return cmd, nil
	}

	return models.Command{}, &domainerrors.ErrParse{Input: line}
}

func parseDuration(line string, now time.Time) (models.Command, bool) {
	groups, ok := match(durationForm, line)
	if !ok {
		return models.Command{}, false
	}

	d, ok := durationFromGroups(groups)
	if !ok {
		return models.Command{}, false
	}

	return models.NewOneTime(now.Add(d), groups["main_text"]), true
}

func parseMoment(line string, now time.Time, utcOffset int) (models.Command, bool) {
	groups, ok := match(momentForm, line)
	if !ok {
		return models.Command{}, false
	}

	due, ok := momentFromGroups(groups, now, utcOffset)
	if !ok {
		return models.Command{}, false
	}

	return models.NewOneTime(due, groups["main_text"]), true
}

func parseRepeating(line string, now time.Time, utcOffset int) (models.Command, bool) {
	groups, ok := match(repeatForm, line)
	if !ok {
		return models.Command{}, false
	}

	start, ok := momentFromGroups(groups, now, utcOffset)
	if !ok {
		return models.Command{}, false
	}

	interval, ok := durationFromGroups(groups)
	if !ok {
		return models.Command{}, false
	}

	return models.NewRepeating(start, interval, groups["main_text"]), true
}

func match(re *regexp.Regexp, line string) (map[string]string, bool) {
	m := re.FindStringSubmatchIndex(line)
	if m == nil {
		return nil, false
	}

	groups := make(map[string]string)

	for i, name := range re.SubexpNames() {
		if name == "" || m[2*i] < 0 {
			continue
		}

		groups[name] = line[m[2*i]:m[2*i+1]]
	}

	return groups, true
}

func durationFromGroups(groups map[string]string) (time.Duration, bool) {
	units := []struct {
		group string
		unit  time.Duration
	}{
		{"d_day", 24 * time.Hour},
		{"d_hour", time.Hour},
		{"d_minute", time.Minute},
		{"d_second", time.Second},
	}

	var total time.Duration

	for _, u := range units {
		n, ok := optionalInt(groups, u.group, 0)
		if !ok {
			return 0, false
		}

		if int64(n) > (math.MaxInt64-int64(total))/int64(u.unit) {
			return 0, false
		}

		total += time.Duration(n) * u.unit
	}

	if total <= 0 {
		return 0, false
	}

	return total, true
}

// momentFromGroups resolves date and time fields in the user's offset.
// Missing date fields default to the user's current local date, a missing
// minute defaults to zero. Values that do not name a real instant fail.
func momentFromGroups(groups map[string]string, now time.Time, utcOffset int) (time.Time, bool) {
	shift := time.Duration(utcOffset) * time.Hour
	local := now.UTC().Add(-shift)

	day, okDay := optionalInt(groups, "m_day", local.Day())
	month, okMonth := optionalInt(groups, "m_month", int(local.Month()))
	year, okYear := optionalInt(groups, "m_year", local.Year())
	minute, okMinute := optionalInt(groups, "m_minute", 0)
	hour, okHour := optionalInt(groups, "m_hour", -1)

	if !okDay || !okMonth || !okYear || !okMinute || !okHour {
		return time.Time{}, false
	}

	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}

	return t.Add(shift), true
}

func optionalInt(groups map[string]string, name string, def int) (int, bool) {
	raw, ok := groups[name]
	if !ok {
		return def, true
	}

	if raw == "" {
		return 0, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return n, true
}
