package expire_payments

import "errors"

var (
	// ErrInternal возвращается, когда не удалось получить просроченные бронирования
	ErrInternal = errors.New("expire_payments: internal error")
)
