// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for analysis windows. Each
// granularity (weekly, monthly, yearly) has its own strategy that knows how
// to place the initial window around a reference date and how to step to
// the adjacent one.

package services

import (
	"fmt"
	"sync"
	"time"

	"budgetit/internal/core"
)

// Title layouts for each granularity.
const (
	weeklyTitleLayout  = "Jan 02"
	monthlyTitleLayout = "Jan 2006"
	yearlyTitleLayout  = "2006"
)

// FrameStrategy is the strategy interface for one granularity.
type FrameStrategy interface {
	// Initial returns the window that contains ref.
	Initial(ref core.Date) core.TimeFrame
	// Navigate returns the window dir steps away from the one starting at
	// start. Negative steps go back in time.
	Navigate(start core.Date, dir core.Direction) core.TimeFrame
}

// WeeklyFrames implements FrameStrategy for Monday-to-Sunday weeks.
type WeeklyFrames struct{}

// Initial returns the week whose Monday is on or before ref.
func (WeeklyFrames) Initial(ref core.Date) core.TimeFrame {
	offset := (int(ref.Weekday()) + 6) % 7
	return weekFrom(ref.AddDays(-offset))
}

// Navigate moves the window by whole weeks from its current start.
func (WeeklyFrames) Navigate(start core.Date, dir core.Direction) core.TimeFrame {
	return weekFrom(start.AddDays(7 * int(dir)))
}

func weekFrom(start core.Date) core.TimeFrame {
	end := start.AddDays(6)
	return core.TimeFrame{
		Granularity: core.Weekly,
		Title:       start.Format(weeklyTitleLayout) + " - " + end.Format(weeklyTitleLayout),
		Start:       start,
		End:         end,
	}
}

// MonthlyFrames implements FrameStrategy for calendar months.
type MonthlyFrames struct{}

// Initial returns the calendar month of ref.
func (MonthlyFrames) Initial(ref core.Date) core.TimeFrame {
	return monthOf(ref.Year(), ref.Month())
}

// Navigate shifts the month, always counting from the first day so that
// short months never skip a neighbour.
func (MonthlyFrames) Navigate(start core.Date, dir core.Direction) core.TimeFrame {
	return monthOf(start.Year(), start.Month()+int(dir))
}

func monthOf(year, month int) core.TimeFrame {
	// time.Date normalizes month overflow into the year
	first := core.DateOf(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	last := core.DateOf(time.Date(first.Year(), time.Month(first.Month())+1, 0, 0, 0, 0, 0, time.UTC))
	return core.TimeFrame{
		Granularity: core.Monthly,
		Title:       first.Format(monthlyTitleLayout),
		Start:       first,
		End:         last,
	}
}

// YearlyFrames implements FrameStrategy for calendar years.
type YearlyFrames struct{}

// Initial returns January 1st to December 31st of ref's year.
func (YearlyFrames) Initial(ref core.Date) core.TimeFrame {
	return yearOf(ref.Year())
}

// Navigate shifts the year.
func (YearlyFrames) Navigate(start core.Date, dir core.Direction) core.TimeFrame {
	return yearOf(start.Year() + int(dir))
}

func yearOf(year int) core.TimeFrame {
	first := core.NewDate(year, 1, 1)
	return core.TimeFrame{
		Granularity: core.Yearly,
		Title:       first.Format(yearlyTitleLayout),
		Start:       first,
		End:         core.NewDate(year, 12, 31),
	}
}

var (
	frameStrategiesMu sync.RWMutex
	// frameStrategies maps granularities to their strategy.
	frameStrategies = map[core.Granularity]FrameStrategy{
		core.Weekly:  WeeklyFrames{},
		core.Monthly: MonthlyFrames{},
		core.Yearly:  YearlyFrames{},
	}
)

// GetFrameStrategy returns the strategy for a granularity.
// Returns an error if the granularity is not supported.
func GetFrameStrategy(g core.Granularity) (FrameStrategy, error) {
	frameStrategiesMu.RLock()
	defer frameStrategiesMu.RUnlock()
	s, ok := frameStrategies[g]
	if !ok {
		return nil, fmt.Errorf("%w: unknown granularity %q", core.ErrValidation, g)
	}
	return s, nil
}

// RegisterFrameStrategy adds or replaces the strategy for a granularity.
func RegisterFrameStrategy(g core.Granularity, s FrameStrategy) {
	frameStrategiesMu.Lock()
	defer frameStrategiesMu.Unlock()
	frameStrategies[g] = s
}

// ComputeTimeFrame returns the analysis window for g.
//
// With initial set, reference is the current date and the window containing
// it is returned. Otherwise reference is the start of the window currently
// shown and the result is dir steps away from it.
func ComputeTimeFrame(g core.Granularity, reference core.Date, dir core.Direction, initial bool) (core.TimeFrame, error) {
	s, err := GetFrameStrategy(g)
	if err != nil {
		return core.TimeFrame{}, err
	}
	if initial {
		return s.Initial(reference), nil
	}
	return s.Navigate(reference, dir), nil
}

// TimeFrameSession holds the window selected by one user. It is not safe for
// concurrent use.
type TimeFrameSession struct {
	now      func() time.Time
	strategy FrameStrategy
	frame    core.TimeFrame
}

// NewTimeFrameSession opens a session on the window of g that contains today.
// A nil now uses time.Now.
func NewTimeFrameSession(g core.Granularity, now func() time.Time) (*TimeFrameSession, error) {
	if now == nil {
		now = time.Now
	}
	s := &TimeFrameSession{now: now}
	if _, err := s.Select(g); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the selected window.
func (s *TimeFrameSession) Current() core.TimeFrame {
	return s.frame
}

// Select switches granularity. The new window is computed from today, not
// from the window shown before.
func (s *TimeFrameSession) Select(g core.Granularity) (core.TimeFrame, error) {
	strategy, err := GetFrameStrategy(g)
	if err != nil {
		return core.TimeFrame{}, err
	}
	s.strategy = strategy
	s.frame = strategy.Initial(core.DateOf(s.now()))
	return s.frame, nil
}

// Previous moves one window back.
func (s *TimeFrameSession) Previous() core.TimeFrame {
	return s.Move(core.Previous)
}

// Next moves one window forward.
func (s *TimeFrameSession) Next() core.TimeFrame {
	return s.Move(core.Next)
}

// Move steps dir windows away from the current one.
func (s *TimeFrameSession) Move(dir core.Direction) core.TimeFrame {
	s.frame = s.strategy.Navigate(s.frame.Start, dir)
	return s.frame
}

// Reset goes back to the window that contains today.
func (s *TimeFrameSession) Reset() core.TimeFrame {
	s.frame = s.strategy.Initial(core.DateOf(s.now()))
	return s.frame
}
