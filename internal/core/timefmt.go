package core

import "time"

// istZone is India Standard Time. A fixed offset keeps formatting
// independent of the host's tzdata.
var istZone = time.FixedZone("IST", 5*3600+30*60)

const istLayout = "02 Jan 2006, 03:04 PM"

// FormatIST formats an instant-derived identity (Unix milliseconds) as
// "DD MMM YYYY, hh:mm AM/PM IST".
func FormatIST(ms int64) string {
	return FormatTimeIST(time.UnixMilli(ms))
}

// FormatTimeIST formats t in the same layout as FormatIST.
func FormatTimeIST(t time.Time) string {
	return t.In(istZone).Format(istLayout) + " IST"
}
