package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/psqlbuilder"
	"github.com/barberly/booking-engine/pkg/txmanager"
)

// Repository каталог барберов и услуг (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBarber получает активного барбера по ID
func (r *Repository) GetBarber(ctx context.Context, id int64) (*domain.Barber, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "active").
		From("barbers").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"active": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBarber - build select query: %v", ErrBuildQuery, err)
	}

	var barber domain.Barber
	err = executor.QueryRowContext(ctx, query, args...).Scan(&barber.ID, &barber.Name, &barber.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBarber - scan barber: %v", ErrScanRow, err)
	}

	return &barber, nil
}

// GetService получает активную услугу по ID вместе с её вариантами
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price", "active").
		From("services").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"active": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
		&service.Price,
		&service.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	options, err := r.getOptions(ctx, executor, service.ID)
	if err != nil {
		return nil, err
	}
	service.Options = options

	return &service, nil
}

func (r *Repository) getOptions(ctx context.Context, executor DBExecutor, serviceID int64) ([]domain.ServiceOption, error) {
	query, args, err := psqlbuilder.Select("id", "service_id", "name", "duration_minutes", "price").
		From("service_options").
		Where(squirrel.Eq{"service_id": serviceID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getOptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	options := make([]domain.ServiceOption, 0)
	for rows.Next() {
		var opt domain.ServiceOption
		var duration sql.NullInt32
		var price sql.NullFloat64

		if err := rows.Scan(&opt.ID, &opt.ServiceID, &opt.Name, &duration, &price); err != nil {
			return nil, fmt.Errorf("%w: getOptions - scan option: %v", ErrScanRow, err)
		}
		if duration.Valid {
			d := int(duration.Int32)
			opt.DurationMinutes = &d
		}
		if price.Valid {
			p := price.Float64
			opt.Price = &p
		}
		options = append(options, opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getOptions - rows error: %v", ErrScanRow, err)
	}

	return options, nil
}
