// Package expiration периодически запускает проход наблюдателя оплаты.
package expiration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/barberly/booking-engine/internal/usecase/expire_payments"
)

// ErrInvalidInterval возвращается при неположительном интервале запуска
var ErrInvalidInterval = errors.New("expiration: interval must be positive")

// Sweeper один проход по просроченным оплатам
type Sweeper interface {
	Execute(ctx context.Context) (*expire_payments.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker запускает Sweeper по расписанию "@every <interval>"
// Следующий запуск пропускается, если предыдущий еще не завершился
type Worker struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	logger  Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker создает воркер; timeout ограничивает длительность одного прохода
func NewWorker(sweeper Sweeper, interval, timeout time.Duration, logger Logger) (*Worker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}
	if timeout <= 0 {
		timeout = interval
	}

	cronLogger := &cronLogger{logger: logger}
	w := &Worker{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper: sweeper,
		timeout: timeout,
		logger:  logger,
	}

	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", interval), w.RunOnce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}

	return w, nil
}

// Start запускает расписание; проходы получают контекст, отменяемый в Stop
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.logger.Info("Expiration worker started")
	w.cron.Start()
}

// Stop останавливает расписание и ждет завершения текущего прохода
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	select {
	case <-w.cron.Stop().Done():
		w.logger.Info("Expiration worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce выполняет один проход с ограничением по времени
func (w *Worker) RunOnce() {
	w.mu.Lock()
	parent := w.ctx
	w.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	if _, err := w.sweeper.Execute(ctx); err != nil {
		w.logger.Error("Expiration sweep failed: %v", err)
	}
}

// cronLogger адаптер Logger к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// cron пишет в Info каждый запуск и пропуск; пропуск интересен как предупреждение
	if msg == "skip" {
		l.logger.Warn("Expiration sweep skipped: previous run still in progress")
	}
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
