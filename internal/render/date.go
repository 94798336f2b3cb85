package render

import (
	"fmt"
	"strconv"
	"time"
)

// Month names in genitive case, as dates are written in running text.
var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDate renders a creation timestamp with a long month name and 24h
// time, matching the locale the page is served in. Unknown locales fall back
// to English.
func FormatDate(t time.Time, locale string) string {
	switch locale {
	case "ru":
		return fmt.Sprintf("%d %s %d, %02d:%02d",
			t.Day(), ruMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	default:
		return fmt.Sprintf("%s %d, %d, %02d:%02d",
			t.Month().String(), t.Day(), t.Year(), t.Hour(), t.Minute())
	}
}

func trimKB(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
