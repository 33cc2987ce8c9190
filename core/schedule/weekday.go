package schedule

import "strings"

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays is the display order of days.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts a day name in any case.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

// Index returns the position of d in Weekdays, or -1 if d is not a day name.
func (d Weekday) Index() int {
	for i, wd := range Weekdays {
		if wd == d {
			return i
		}
	}
	return -1
}

func (d Weekday) Valid() bool { return d.Index() >= 0 }

func (d Weekday) String() string { return string(d) }

// dayLess orders days Monday first. Unknown names go last, in lexical order.
func dayLess(a, b Weekday) bool {
	ia, ib := a.Index(), b.Index()
	if ia < 0 && ib < 0 {
		return a < b
	}
	if ia < 0 || ib < 0 {
		return ib < 0
	}
	return ia < ib
}
