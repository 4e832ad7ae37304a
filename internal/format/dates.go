package format

import "time"

// DateLayout is the storage layout of invoice dates.
const DateLayout = "2006-01-02"

// FormatDateToLocal renders a stored date as "Jan 2, 2006". Unparsable input is returned as is.
func FormatDateToLocal(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, date); err != nil {
			return date
		}
	}
	return t.Format("Jan 2, 2006")
}

// Today returns now as a storage date.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
