package slots

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/types"
)

func schedule(start, end string, pauses ...domain.Pause) *domain.ScheduleDefinition {
	return &domain.ScheduleDefinition{
		BarberID:  1,
		Weekday:   time.Monday,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
		Pauses:    pauses,
	}
}

func booking(start string, duration int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		BarberID:        1,
		StartTime:       types.TimeString(start),
		DurationMinutes: duration,
		Status:          status,
	}
}

func generate(t *testing.T, s *domain.ScheduleDefinition, ledger []*domain.Booking, duration, granularity int) []string {
	t.Helper()
	seq, err := Generate(s, ledger, duration, granularity)
	require.NoError(t, err)
	return Strings(Collect(seq))
}

func TestGenerate_ReferenceScenario(t *testing.T) {
	open := schedule("09:00", "12:00")
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		generate(t, open, nil, 30, 30))

	withPause := schedule("09:00", "12:00", domain.Pause{StartTime: "10:00", EndTime: "10:30"})
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:30", "11:00", "11:30"},
		generate(t, withPause, nil, 30, 30))

	ledger := []*domain.Booking{booking("09:30", 30, domain.StatusConfirmed)}
	assert.Equal(t,
		[]string{"09:00", "10:30", "11:00", "11:30"},
		generate(t, withPause, ledger, 30, 30))
}

func TestGenerate_CancelledBookingsDoNotOccupy(t *testing.T) {
	ledger := []*domain.Booking{
		booking("09:00", 60, domain.StatusCancelled),
		booking("11:00", 30, domain.StatusAwaitingPayment),
	}
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:30"},
		generate(t, schedule("09:00", "12:00"), ledger, 30, 30))
}

func TestGenerate_Completeness(t *testing.T) {
	tests := []struct {
		open, close           string
		duration, granularity int
	}{
		{"09:00", "12:00", 30, 30},
		{"09:00", "12:00", 45, 15},
		{"09:00", "18:00", 60, 30},
		{"08:00", "08:50", 20, 15},
		{"10:00", "11:00", 60, 30},
		{"10:00", "11:00", 90, 30},
		{"00:00", "24:00", 25, 10},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s-%s/d%d/g%d", tt.open, tt.close, tt.duration, tt.granularity)
		t.Run(name, func(t *testing.T) {
			s := schedule(tt.open, tt.close)
			window := s.EndTime.Minutes() - s.StartTime.Minutes()

			want := 0
			if tt.duration <= window {
				want = (window-tt.duration)/tt.granularity + 1
			}

			assert.Len(t, generate(t, s, nil, tt.duration, tt.granularity), want)
		})
	}
}

func TestGenerate_DurationExceedsWindow(t *testing.T) {
	assert.Empty(t, generate(t, schedule("09:00", "10:00"), nil, 90, 30))
}

func TestGenerate_GranularityNotDividingWindow(t *testing.T) {
	// 09:00-10:00 с шагом 25: кандидаты 09:00, 09:25, 09:50; 09:50+5 укладывается
	assert.Equal(t, []string{"09:00", "09:25", "09:50"}, generate(t, schedule("09:00", "10:00"), nil, 5, 25))
	// 09:50+20 выходит за закрытие
	assert.Equal(t, []string{"09:00", "09:25"}, generate(t, schedule("09:00", "10:00"), nil, 20, 25))
}

func TestGenerate_NoSchedule(t *testing.T) {
	assert.Empty(t, generate(t, nil, nil, 30, 30))
}

func TestGenerate_InvalidInput(t *testing.T) {
	_, err := Generate(schedule("09:00", "12:00"), nil, 0, 30)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = Generate(schedule("09:00", "12:00"), nil, 30, 0)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	assert.ErrorIs(t, Check(schedule("09:00", "12:00"), nil, "09:00", -5), ErrInvalidDuration)
}

func TestGenerate_Restartable(t *testing.T) {
	seq, err := Generate(schedule("09:00", "11:00"), nil, 30, 30)
	require.NoError(t, err)

	first := Collect(seq)
	second := Collect(seq)
	assert.Equal(t, first, second)

	// Ранний выход из итерации не ломает последовательность
	for range seq {
		break
	}
	assert.Equal(t, first, Collect(seq))
}

func TestGenerate_PauseExclusion(t *testing.T) {
	// Перерыв 10:00-11:00, услуга 60 минут, шаг 15
	s := schedule("08:00", "14:00", domain.Pause{StartTime: "10:00", EndTime: "11:00"})
	got := generate(t, s, nil, 60, 15)

	cases := map[string]string{
		"overlapping the start": "09:30", // 09:30-10:30
		"overlapping the end":   "10:30", // 10:30-11:30
		"fully inside":          "10:00", // 10:00-11:00 совпадает с перерывом
		"touching before":       "09:00", // 09:00-10:00 допустим
		"touching after":        "11:00", // 11:00-12:00 допустим
	}

	assert.NotContains(t, got, cases["overlapping the start"])
	assert.NotContains(t, got, cases["overlapping the end"])
	assert.NotContains(t, got, cases["fully inside"])
	assert.Contains(t, got, cases["touching before"])
	assert.Contains(t, got, cases["touching after"])

	// Слот целиком содержит перерыв: 09:45-11:45 для услуги 120 минут
	assert.NotContains(t, generate(t, s, nil, 120, 15), "09:45")

	// Перерыв целиком содержит слот: 10:15-10:30 для услуги 15 минут
	assert.NotContains(t, generate(t, s, nil, 15, 15), "10:15")
}

func TestCheck_Reasons(t *testing.T) {
	s := schedule("09:00", "12:00", domain.Pause{StartTime: "10:00", EndTime: "10:30"})
	ledger := []*domain.Booking{booking("11:00", 30, domain.StatusPending)}

	tests := []struct {
		name     string
		start    string
		duration int
		want     error
	}{
		{"valid", "09:00", 30, nil},
		{"before opening", "08:30", 30, ErrOutsideWorkingHours},
		{"past closing", "11:45", 30, ErrOutsideWorkingHours},
		{"pause", "09:45", 30, ErrWithinPause},
		{"booking", "10:45", 30, ErrConflictsWithExistingBooking},
		{"touching booking", "10:30", 30, nil},
		{"ends at close", "11:30", 30, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(s, ledger, types.TimeString(tt.start), tt.duration)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		})
	}

	assert.ErrorIs(t, Check(nil, nil, "09:00", 30), ErrOutsideWorkingHours)
}

// Каждый сгенерированный слот проходит Check на том же реестре
func TestGenerate_SoundnessAgainstCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		s := schedule("08:00", "20:00",
			domain.Pause{StartTime: "12:00", EndTime: "13:00"},
			domain.Pause{StartTime: "16:10", EndTime: "16:25"})

		var ledger []*domain.Booking
		for j := 0; j < rng.Intn(6); j++ {
			start := 8*60 + rng.Intn(11*60)
			status := domain.StatusConfirmed
			if rng.Intn(3) == 0 {
				status = domain.StatusCancelled
			}
			ledger = append(ledger, booking(types.MustFromMinutes(start).String(), 15+rng.Intn(60), status))
		}

		duration := 15 + rng.Intn(75)
		granularity := []int{5, 10, 15, 30}[rng.Intn(4)]

		seq, err := Generate(s, ledger, duration, granularity)
		require.NoError(t, err)

		for slot := range seq {
			require.NoError(t, Check(s, ledger, slot, duration), "slot %s duration %d", slot, duration)
		}
	}
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: 60, End: 120}

	assert.True(t, a.Overlaps(Interval{Start: 90, End: 150}))
	assert.True(t, a.Overlaps(Interval{Start: 30, End: 90}))
	assert.True(t, a.Overlaps(Interval{Start: 70, End: 80}))
	assert.True(t, a.Overlaps(Interval{Start: 0, End: 200}))
	assert.False(t, a.Overlaps(Interval{Start: 120, End: 180}))
	assert.False(t, a.Overlaps(Interval{Start: 0, End: 60}))
}

func TestReason(t *testing.T) {
	assert.Equal(t, ReasonOutsideWorkingHours, Reason(fmt.Errorf("wrapped: %w", ErrOutsideWorkingHours)))
	assert.Equal(t, ReasonWithinPause, Reason(ErrWithinPause))
	assert.Equal(t, ReasonConflict, Reason(ErrConflictsWithExistingBooking))
	assert.Equal(t, ReasonUnknown, Reason(ErrSlotUnavailable))
	assert.Empty(t, Reason(ErrInvalidDuration))
}
