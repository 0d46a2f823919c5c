package cruise

// SailDateLayout renders dates like "October 4, 2025"
const SailDateLayout = "January 2, 2006"

// FormatSailDate formats a sail start as a UTC calendar date, so the day
// never shifts with the local time zone.
func FormatSailDate(ms EpochMillis) string {
	return ms.Time().Format(SailDateLayout)
}
