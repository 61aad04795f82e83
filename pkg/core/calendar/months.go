package calendar

import (
	"strconv"
	"strings"
	"time"
)

var monthAbbreviations = [...]string{
	"JAN", "FEV", "MAR", "ABR", "MAI", "JUN",
	"JUL", "AGO", "SET", "OUT", "NOV", "DEZ",
}

var monthNames = map[string]time.Month{
	"JANEIRO":   time.January,
	"FEVEREIRO": time.February,
	"MARÇO":     time.March,
	"MARCO":     time.March,
	"ABRIL":     time.April,
	"MAIO":      time.May,
	"JUNHO":     time.June,
	"JULHO":     time.July,
	"AGOSTO":    time.August,
	"SETEMBRO":  time.September,
	"OUTUBRO":   time.October,
	"NOVEMBRO":  time.November,
	"DEZEMBRO":  time.December,
}

// MonthLabel returns the three-letter label used on leave records ("JAN".."DEZ")
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthAbbreviations[m-1]
}

// ParseMonth accepts "JUN", "Junho", "06" or "6" and returns the month
func ParseMonth(label string) (time.Month, bool) {
	l := strings.ToUpper(strings.TrimSpace(label))
	if l == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(l); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}

	if m, ok := monthNames[l]; ok {
		return m, true
	}

	// English labels appear in older imports
	if len(l) >= 3 {
		prefix := l[:3]
		for i, abbr := range monthAbbreviations {
			if abbr == prefix {
				return time.Month(i + 1), true
			}
		}
		for m := time.January; m <= time.December; m++ {
			if strings.ToUpper(m.String()[:3]) == prefix {
				return m, true
			}
		}
	}

	return 0, false
}

// SameMonth reports whether two month labels name the same month
func SameMonth(a string, m time.Month) bool {
	parsed, ok := ParseMonth(a)
	return ok && parsed == m
}
