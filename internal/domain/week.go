package domain

import "time"

// DayLayout is the calendar-day format used across the API.
const DayLayout = "2006-01-02"

// WeekWindow is the Monday 00:00:00.000000 to Sunday 23:59:59.999999 span
// containing some reference instant.
type WeekWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekOf returns the week window containing ref, in ref's location.
func WeekOf(ref time.Time) WeekWindow {
	// time.Weekday has Sunday = 0; shift so Monday = 0 .. Sunday = 6.
	offset := (int(ref.Weekday()) + 6) % 7
	y, m, d := ref.Date()
	loc := ref.Location()
	return WeekWindow{
		Start: time.Date(y, m, d-offset, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d-offset+6, 23, 59, 59, 999999000, loc),
	}
}

// Previous returns the window exactly seven days earlier.
func (w WeekWindow) Previous() WeekWindow {
	return WeekWindow{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
}

// Next returns the window exactly seven days later.
func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{Start: w.Start.AddDate(0, 0, 7), End: w.End.AddDate(0, 0, 7)}
}

// Contains reports whether t lies in [Start, End].
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the seven midnights Monday..Sunday of the window.
func (w WeekWindow) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}
