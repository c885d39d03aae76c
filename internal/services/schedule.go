// Package services holds the finance tracker's business logic: the recurring
// engine, balance and stats aggregation, rate synchronisation and the CRUD
// orchestration used by the HTTP API.
package services

import (
	"time"

	"portfel/internal/core"
)

// Scheduler computes the next occurrence of a subscription from the date of
// its current occurrence. Each frequency has its own implementation.
type Scheduler interface {
	Next(last time.Time) time.Time
}

// WeeklyScheduler adds seven calendar days.
type WeeklyScheduler struct{}

func (WeeklyScheduler) Next(last time.Time) time.Time {
	return last.AddDate(0, 0, 7)
}

// MonthlyScheduler adds one calendar month, clamping to the target month's last day.
type MonthlyScheduler struct{}

func (MonthlyScheduler) Next(last time.Time) time.Time {
	return core.AddMonthsClamped(last, 1)
}

// YearlyScheduler adds one year; Feb 29 becomes Feb 28 in non-leap years.
type YearlyScheduler struct{}

func (YearlyScheduler) Next(last time.Time) time.Time {
	return core.AddYearsClamped(last, 1)
}

var schedulers = map[core.Frequency]Scheduler{
	core.Weekly:  WeeklyScheduler{},
	core.Monthly: MonthlyScheduler{},
	core.Yearly:  YearlyScheduler{},
}

// GetScheduler returns the scheduler for frequency. Missing or unknown
// frequencies are treated as monthly.
func GetScheduler(frequency core.Frequency) Scheduler {
	if s, ok := schedulers[frequency]; ok {
		return s
	}
	return schedulers[core.Monthly]
}

// RegisterScheduler installs a scheduler for a frequency. Not safe for
// concurrent use with GetScheduler; call it during start-up.
func RegisterScheduler(frequency core.Frequency, s Scheduler) {
	schedulers[frequency] = s
}

// NextDueDate evaluates the calendar arithmetic in loc so month boundaries
// follow the user's calendar rather than UTC.
func NextDueDate(last time.Time, frequency core.Frequency, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return GetScheduler(frequency).Next(last.In(loc))
}
