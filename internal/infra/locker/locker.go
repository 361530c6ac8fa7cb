// Package locker взаимное исключение резервирований одного барбера на один день.
package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
)

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось получить до отмены контекста или таймаута
	ErrLockTimeout = errors.New("locker: failed to acquire lock")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("locker: backend error")
)

// UnlockFunc освобождает полученную блокировку
type UnlockFunc func()

// BarberDayKey ключ блокировки календаря барбера на дату
func BarberDayKey(barberID int64, date time.Time) string {
	return fmt.Sprintf("booking:barber:%d:%s", barberID, date.Format(domain.DateFormat))
}

type entry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker блокировки в памяти процесса
// Подходит для одного экземпляра сервиса; для нескольких реплик используется RedisLocker
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// NewMemoryLocker создает блокировщик в памяти
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*entry)}
}

// Lock ждет освобождения ключа или отмены контекста
func (l *MemoryLocker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

// release удаляет запись, когда ключ больше никому не нужен
func (l *MemoryLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// NopLocker не блокирует ничего: защиту обеспечивают транзакция и ограничение БД
type NopLocker struct{}

// Lock сразу возвращает пустую функцию освобождения
func (NopLocker) Lock(context.Context, string) (UnlockFunc, error) {
	return func() {}, nil
}
