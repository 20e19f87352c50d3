package services

import (
	"time"

	"github.com/ironforge/gym-admin-backend/internal/models"
)

// Clock supplies the current time and the gym's calendar location
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a clock reading the wall time in loc
func SystemClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

// Current returns the time in the gym's location
func (c Clock) Current() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now()
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return t
}

// Today returns the gym's current calendar date
func (c Clock) Today() models.Date {
	return models.NewDate(c.Current())
}

// MonthStart returns the first day of the current month
func (c Clock) MonthStart() models.Date {
	now := c.Current()
	return models.NewDate(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}
