// Package events доставка событий бронирования коллаборатору уведомлений
// (email, WhatsApp, push) и живым админ-дашбордам.
package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/barberly/booking-engine/internal/domain"
)

var (
	// ErrPublish возвращается, когда событие не удалось доставить брокеру
	ErrPublish = errors.New("events: failed to publish event")

	// ErrClosed возвращается при публикации в закрытый паблишер
	ErrClosed = errors.New("events: publisher closed")
)

// Заголовки сообщений
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
)

const contentTypeJSON = "application/json"

func encode(event domain.BookingEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: encode event %s: %v", ErrPublish, event.ID, err)
	}
	return body, nil
}
