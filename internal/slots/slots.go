// Package slots computes bookable start times for a barber's day.
//
// Generation and reservation share one predicate (Check), so a slot offered by
// Generate is always accepted by Check against the same ledger.
package slots

import (
	"errors"
	"fmt"
	"iter"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/types"
)

var (
	// ErrSlotUnavailable общий родитель для всех причин недоступности слота
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrOutsideWorkingHours слот начинается до открытия или заканчивается после закрытия
	ErrOutsideWorkingHours = fmt.Errorf("%w: outside working hours", ErrSlotUnavailable)

	// ErrWithinPause слот пересекается с перерывом
	ErrWithinPause = fmt.Errorf("%w: within pause", ErrSlotUnavailable)

	// ErrConflictsWithExistingBooking слот пересекается с активным бронированием
	ErrConflictsWithExistingBooking = fmt.Errorf("%w: conflicts with existing booking", ErrSlotUnavailable)

	// ErrInvalidDuration длительность услуги не положительна (ошибка вызывающего кода)
	ErrInvalidDuration = errors.New("slots: duration must be positive")

	// ErrInvalidGranularity шаг генерации не положителен (ошибка вызывающего кода)
	ErrInvalidGranularity = errors.New("slots: granularity must be positive")
)

// Interval half-open interval [Start, End) in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// Overlaps half-open overlap test: a<d && c<b
// Touching intervals (one ends where the other starts) do not overlap
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// day precomputed view of a schedule and its ledger
type day struct {
	open   int
	close  int
	pauses []Interval
	busy   []Interval
}

func newDay(schedule *domain.ScheduleDefinition, ledger []*domain.Booking) day {
	d := day{
		open:   schedule.StartTime.Minutes(),
		close:  schedule.EndTime.Minutes(),
		pauses: make([]Interval, 0, len(schedule.Pauses)),
		busy:   make([]Interval, 0, len(ledger)),
	}

	for _, p := range schedule.Pauses {
		d.pauses = append(d.pauses, Interval{Start: p.StartTime.Minutes(), End: p.EndTime.Minutes()})
	}

	for _, b := range ledger {
		// Отмененные бронирования не занимают время
		if b == nil || !b.IsActive() {
			continue
		}
		start := b.StartTime.Minutes()
		if start < 0 {
			continue
		}
		d.busy = append(d.busy, Interval{Start: start, End: start + b.DurationMinutes})
	}

	return d
}

// check applies rules (a)-(c) to a candidate interval
func (d day) check(candidate Interval) error {
	if candidate.Start < d.open || candidate.End > d.close {
		return ErrOutsideWorkingHours
	}

	for _, p := range d.pauses {
		if candidate.Overlaps(p) {
			return ErrWithinPause
		}
	}

	for _, b := range d.busy {
		if candidate.Overlaps(b) {
			return ErrConflictsWithExistingBooking
		}
	}

	return nil
}

// Check validates a single requested start against the schedule and ledger
// A nil schedule means the barber does not work that weekday
func Check(
	schedule *domain.ScheduleDefinition,
	ledger []*domain.Booking,
	start types.TimeString,
	durationMinutes int,
) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMinutes)
	}
	if schedule == nil {
		return ErrOutsideWorkingHours
	}

	s := start.Minutes()
	if s < 0 {
		return fmt.Errorf("%w: invalid start %q", ErrOutsideWorkingHours, start)
	}

	return newDay(schedule, ledger).check(Interval{Start: s, End: s + durationMinutes})
}

// Generate returns the chronological sequence of bookable start times
//
// The walk starts at schedule.StartTime and advances in granularity steps;
// candidates starting at or after schedule.EndTime are never produced.
// The returned sequence is pure and may be iterated any number of times.
// A nil schedule yields an empty sequence.
func Generate(
	schedule *domain.ScheduleDefinition,
	ledger []*domain.Booking,
	durationMinutes int,
	granularityMinutes int,
) (iter.Seq[types.TimeString], error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMinutes)
	}
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGranularity, granularityMinutes)
	}

	if schedule == nil {
		return func(yield func(types.TimeString) bool) {}, nil
	}

	d := newDay(schedule, ledger)

	return func(yield func(types.TimeString) bool) {
		for s := d.open; s < d.close; s += granularityMinutes {
			if d.check(Interval{Start: s, End: s + durationMinutes}) != nil {
				continue
			}
			if !yield(types.MustFromMinutes(s)) {
				return
			}
		}
	}, nil
}

// Collect materializes a sequence into a non-nil slice
func Collect(seq iter.Seq[types.TimeString]) []types.TimeString {
	result := make([]types.TimeString, 0)
	for s := range seq {
		result = append(result, s)
	}
	return result
}

// Strings formats slots as HH:MM strings
func Strings(slots []types.TimeString) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

// Коды причин недоступности слота для API и метрик
const (
	ReasonOutsideWorkingHours = "outside_working_hours"
	ReasonWithinPause         = "within_pause"
	ReasonConflict            = "conflicts_with_existing_booking"
	ReasonUnknown             = "slot_unavailable"
)

// Reason returns the machine-readable code of a slot rejection, "" for other errors
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrOutsideWorkingHours):
		return ReasonOutsideWorkingHours
	case errors.Is(err, ErrWithinPause):
		return ReasonWithinPause
	case errors.Is(err, ErrConflictsWithExistingBooking):
		return ReasonConflict
	case errors.Is(err, ErrSlotUnavailable):
		return ReasonUnknown
	}
	return ""
}
