// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import "time"

// SecondsPerDay is the length of a UTC calendar day in seconds.
const SecondsPerDay = 24 * 60 * 60

// TruncateToDateUTC truncates the given time to midnight (00:00:00) in UTC.
//
// Example:
//   - Input: 2025-10-17 14:23:45 UTC
//   - Output: 2025-10-17 00:00:00 UTC
func TruncateToDateUTC(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// NextDailyReset returns the next 00:00 UTC strictly after t.
//
// Example:
//   - Input: 2025-10-17 14:23:45 UTC
//   - Output: 2025-10-18 00:00:00 UTC
//   - Input: 2025-10-17 00:00:00 UTC
//   - Output: 2025-10-18 00:00:00 UTC
func NextDailyReset(t time.Time) time.Time {
	return TruncateToDateUTC(t).AddDate(0, 0, 1)
}

// NextWeeklyReset returns the next Monday 00:00 UTC strictly after t.
// A Monday input (even exactly at midnight) resets on the following Monday.
func NextWeeklyReset(t time.Time) time.Time {
	day := TruncateToDateUTC(t)
	days := (8 - int(day.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return day.AddDate(0, 0, days)
}

// NextMonthlyReset returns 00:00 UTC on the 1st of the calendar month after t.
func NextMonthlyReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// CeilDays converts a second count to whole days, rounding partial days up.
// Non-positive input yields 0.
func CeilDays(seconds int64) int {
	if seconds <= 0 {
		return 0
	}
	return int((seconds + SecondsPerDay - 1) / SecondsPerDay)
}
