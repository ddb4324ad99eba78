package suggest

import (
	"fmt"
	"math"
	"time"
)

// relativeUnit is one step of the relative-date bucket chain. span is how
// many of this unit make up the next one.
type relativeUnit struct {
	span   float64
	single string
	plural string
}

var relativeUnits = []relativeUnit{
	{span: 60, single: "sec.", plural: "sec."},
	{span: 60, single: "min.", plural: "min."},
	{span: 24, single: "hr.", plural: "hr."},
	{span: 7, single: "day", plural: "days"},
	{span: 4, single: "wk.", plural: "wk."},
	{span: 12, single: "mo.", plural: "mo."},
	{span: math.Inf(1), single: "yr.", plural: "yr."},
}

// RelativeDate renders t relative to now in short form: "45 sec. ago",
// "3 days ago", "in 2 hr.". A zero t has no meaningful distance and falls
// back to the absolute date-time in loc.
func RelativeDate(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return LocaleString(t, loc)
	}

	delta := t.Sub(now).Seconds()
	for _, u := range relativeUnits {
		if math.Abs(delta) < u.span {
			return formatRelative(delta, u)
		}
		delta /= u.span
	}
	// unreachable: the last span is infinite
	return LocaleString(t, loc)
}

func formatRelative(delta float64, u relativeUnit) string {
	n := math.Floor(delta + 0.5)
	count := int64(math.Abs(n))

	unit := u.plural
	if count == 1 {
		unit = u.single
	}

	if n < 0 || (n == 0 && delta < 0) {
		return fmt.Sprintf("%d %s ago", count, unit)
	}
	return fmt.Sprintf("in %d %s", count, unit)
}

// LocaleString renders t as an absolute local date-time.
func LocaleString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("1/2/2006, 3:04:05 PM")
}
