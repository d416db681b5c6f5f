package domain

import (
	"fmt"
	"time"
)

// InvoiceNumber derives a sortable display identifier purely from wall-clock
// time: {prefix}{YYYY}{MM}{DD}{HHMMSSmmm}. No database read, no uniqueness.
// Two bills in the same millisecond can collide; the schema tolerates it —
// this trades strict sequence numbering for freedom from the
// read-then-increment race under concurrent bill creation.
func InvoiceNumber(prefix string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s%s%03d", prefix, now.Format("20060102150405"), now.Nanosecond()/int(time.Millisecond))
}
