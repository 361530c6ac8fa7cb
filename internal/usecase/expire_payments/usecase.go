package expire_payments

import (
	"context"
	"fmt"
)

// UseCase один проход наблюдателя оплаты: отменяет бронирования с истекшим сроком
// Переход выполняется через Expirer, поэтому повторные и параллельные проходы
// не порождают повторных отмен и событий.
type UseCase struct {
	bookingRepo  BookingRepository
	expirer      Expirer
	metrics      Metrics
	batchSize    int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	expirer Expirer,
	metrics Metrics,
	batchSize int,
	logger Logger,
) *UseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		expirer:      expirer,
		metrics:      metrics,
		batchSize:    batchSize,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет один проход
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	started := uc.timeProvider.Now()

	overdue, err := uc.bookingRepo.GetOverduePayments(ctx, started, uc.batchSize)
	if err != nil {
		uc.logger.Error("ExpirePayments: failed to fetch overdue bookings: %v", err)
		return nil, fmt.Errorf("%w: Execute - repository error: %v", ErrInternal, err)
	}

	resp := &Response{Scanned: len(overdue), IDs: make([]int64, 0, len(overdue))}

	for _, booking := range overdue {
		if ctx.Err() != nil {
			uc.logger.Warn("ExpirePayments: sweep interrupted after %d of %d bookings", resp.Expired+resp.Failed, len(overdue))
			break
		}

		expired, err := uc.expirer.ExpireIfOverdue(ctx, booking)
		if err != nil {
			// Ошибка одного бронирования не останавливает проход
			resp.Failed++
			uc.logger.Warn("ExpirePayments: booking id=%d not expired: %v", booking.ID, err)
			continue
		}
		if expired {
			resp.Expired++
			resp.IDs = append(resp.IDs, booking.ID)
		}
	}

	uc.metrics.SweepCompleted(resp.Expired, uc.timeProvider.Now().Sub(started))

	if resp.Scanned > 0 {
		uc.logger.Info("ExpirePayments: scanned=%d, expired=%d, failed=%d", resp.Scanned, resp.Expired, resp.Failed)
	}

	return resp, nil
}
