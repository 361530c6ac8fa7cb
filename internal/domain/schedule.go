package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/barberly/booking-engine/pkg/types"
)

// ErrInvalidSchedule возвращается для расписания, нарушающего инварианты
var ErrInvalidSchedule = errors.New("domain: invalid schedule")

// Pause an intra-day break inside the working window, [StartTime, EndTime)
type Pause struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ScheduleDefinition a barber's working window and pauses for one weekday
// Read-only for the booking flow; edited only by administrators
type ScheduleDefinition struct {
	ID        int64
	BarberID  int64
	Weekday   time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
	Pauses    []Pause
}

// Validate checks start < end, pauses inside the window and pairwise non-overlapping
func (s *ScheduleDefinition) Validate() error {
	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidSchedule, s.Weekday)
	}
	if err := s.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidSchedule, err)
	}
	if err := s.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: end time: %v", ErrInvalidSchedule, err)
	}
	if !s.StartTime.IsBefore(s.EndTime) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidSchedule, s.StartTime, s.EndTime)
	}

	pauses := s.SortedPauses()
	for i, p := range pauses {
		if err := p.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: pause start: %v", ErrInvalidSchedule, err)
		}
		if err := p.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: pause end: %v", ErrInvalidSchedule, err)
		}
		if !p.StartTime.IsBefore(p.EndTime) {
			return fmt.Errorf("%w: pause %s-%s is empty", ErrInvalidSchedule, p.StartTime, p.EndTime)
		}
		if p.StartTime.IsBefore(s.StartTime) || p.EndTime.IsAfter(s.EndTime) {
			return fmt.Errorf("%w: pause %s-%s outside working hours", ErrInvalidSchedule, p.StartTime, p.EndTime)
		}
		if i > 0 && p.StartTime.IsBefore(pauses[i-1].EndTime) {
			return fmt.Errorf("%w: pauses %s-%s and %s-%s overlap", ErrInvalidSchedule,
				pauses[i-1].StartTime, pauses[i-1].EndTime, p.StartTime, p.EndTime)
		}
	}

	return nil
}

// SortedPauses returns a copy of the pauses ordered by start time
func (s *ScheduleDefinition) SortedPauses() []Pause {
	pauses := make([]Pause, len(s.Pauses))
	copy(pauses, s.Pauses)
	sort.Slice(pauses, func(i, j int) bool {
		return pauses[i].StartTime.IsBefore(pauses[j].StartTime)
	})
	return pauses
}
