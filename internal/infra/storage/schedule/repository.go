package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/psqlbuilder"
	"github.com/barberly/booking-engine/pkg/txmanager"
)

// Repository репозиторий расписаний барберов
// Расписания редактируются администраторами, поток бронирования их только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSchedule получает рабочее окно и перерывы барбера на день недели
// Возвращает ErrScheduleNotFound, если барбер в этот день не работает
func (r *Repository) GetSchedule(ctx context.Context, barberID int64, weekday time.Weekday) (*domain.ScheduleDefinition, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"barber_id",
		"weekday",
		"start_time",
		"end_time",
	).
		From("schedules").
		Where(squirrel.Eq{"barber_id": barberID}).
		Where(squirrel.Eq{"weekday": int(weekday)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - build select query: %v", ErrBuildQuery, err)
	}

	var schedule domain.ScheduleDefinition
	var day int

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&schedule.ID,
		&schedule.BarberID,
		&day,
		&schedule.StartTime,
		&schedule.EndTime,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - scan schedule: %v", ErrScanRow, err)
	}
	schedule.Weekday = time.Weekday(day)

	pauses, err := r.getPauses(ctx, executor, schedule.ID)
	if err != nil {
		return nil, err
	}
	schedule.Pauses = pauses

	return &schedule, nil
}

func (r *Repository) getPauses(ctx context.Context, executor DBExecutor, scheduleID int64) ([]domain.Pause, error) {
	query, args, err := psqlbuilder.Select("start_time", "end_time").
		From("schedule_pauses").
		Where(squirrel.Eq{"schedule_id": scheduleID}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getPauses - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getPauses - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	pauses := make([]domain.Pause, 0)
	for rows.Next() {
		var p domain.Pause
		if err := rows.Scan(&p.StartTime, &p.EndTime); err != nil {
			return nil, fmt.Errorf("%w: getPauses - scan pause: %v", ErrScanRow, err)
		}
		pauses = append(pauses, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getPauses - rows error: %v", ErrScanRow, err)
	}

	return pauses, nil
}

// Upsert сохраняет расписание барбера на день недели, заменяя перерывы
// Расписание валидируется до записи
func (r *Repository) Upsert(ctx context.Context, schedule *domain.ScheduleDefinition) (*domain.ScheduleDefinition, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedules").
		Columns("barber_id", "weekday", "start_time", "end_time").
		Values(schedule.BarberID, int(schedule.Weekday), schedule.StartTime, schedule.EndTime).
		Suffix("ON CONFLICT (barber_id, weekday) DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&schedule.ID); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Delete("schedule_pauses").
		Where(squirrel.Eq{"schedule_id": schedule.ID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Upsert - delete pauses: %v", ErrExecQuery, err)
	}

	if len(schedule.Pauses) == 0 {
		return schedule, nil
	}

	insertBuilder := psqlbuilder.Insert("schedule_pauses").Columns("schedule_id", "start_time", "end_time")
	for _, p := range schedule.Pauses {
		insertBuilder = insertBuilder.Values(schedule.ID, p.StartTime, p.EndTime)
	}

	query, args, err = insertBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build pauses insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Upsert - insert pauses: %v", ErrExecQuery, err)
	}

	return schedule, nil
}
