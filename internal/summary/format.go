package summary

import "fmt"

// HoursMinutes is an elapsed time broken down for display. Leftover seconds
// are dropped.
type HoursMinutes struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

// Breakdown splits a count of seconds into whole hours and minutes.
func Breakdown(seconds int64) HoursMinutes {
	if seconds < 0 {
		seconds = 0
	}
	return HoursMinutes{
		Hours:   seconds / 3600,
		Minutes: seconds % 3600 / 60,
	}
}

func (hm HoursMinutes) String() string {
	if hm.Hours == 0 {
		return fmt.Sprintf("%dm", hm.Minutes)
	}
	return fmt.Sprintf("%dh %02dm", hm.Hours, hm.Minutes)
}
