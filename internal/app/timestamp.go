package app

import (
	"fmt"
	"time"
)

var weekdaysPT = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

var monthsPT = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatTimestamp renders t as a full pt-BR date with short time,
// e.g. "quinta-feira, 16 de outubro de 2026 às 06:00".
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d às %02d:%02d",
		weekdaysPT[t.Weekday()], t.Day(), monthsPT[t.Month()], t.Year(), t.Hour(), t.Minute())
}
