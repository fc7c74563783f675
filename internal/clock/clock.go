// Package clock renders the portal's display timestamps.
package clock

import (
	"fmt"
	"time"
)

// Func returns the current time. Services take one so tests can pin it.
type Func func() time.Time

var monthsID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// TimeOfDay renders a 12-hour, zero padded time such as "08:05 PM".
func TimeOfDay(t time.Time) string {
	return t.Format("03:04 PM")
}

// LongDate renders an Indonesian long date such as "20 Juli 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}
