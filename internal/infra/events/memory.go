package events

import (
	"context"
	"sync"

	"github.com/barberly/booking-engine/internal/domain"
)

const subscriberBuffer = 64

// Broker шина событий в памяти процесса
// Медленный подписчик не блокирует публикацию: при заполненном буфере событие для него отбрасывается
type Broker struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.BookingEvent
	nextID  int
	closed  bool
	dropped int
}

// NewBroker создает шину событий в памяти
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan domain.BookingEvent)}
}

// Publish рассылает событие всем подписчикам
func (b *Broker) Publish(_ context.Context, event domain.BookingEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.dropped++
		}
	}
	return nil
}

// Subscribe возвращает канал событий и функцию отписки
func (b *Broker) Subscribe() (<-chan domain.BookingEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.BookingEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Dropped количество событий, не доставленных переполненным подписчикам
func (b *Broker) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close закрывает каналы всех подписчиков
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	return nil
}
