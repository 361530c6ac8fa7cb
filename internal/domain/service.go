package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceOptionNotFound возвращается, когда вариант услуги не принадлежит услуге
	ErrServiceOptionNotFound = errors.New("domain: service option not found")

	// ErrInvalidDuration возвращается для неположительной длительности
	ErrInvalidDuration = errors.New("domain: duration must be positive")
)

// Service a bookable service offered by the barbershop
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
	Options         []ServiceOption
}

// ServiceOption a sub-variant of a service; nil fields inherit the base value
type ServiceOption struct {
	ID              int64
	ServiceID       int64
	Name            string
	DurationMinutes *int
	Price           *float64
}

// ResolvedService the concrete duration and price a booking is computed with
type ResolvedService struct {
	ServiceID       int64
	OptionID        *int64
	Name            string
	DurationMinutes int
	Price           float64
}

// Resolve collapses the optional variant into a single {duration, price}
func (s *Service) Resolve(optionID *int64) (ResolvedService, error) {
	resolved := ResolvedService{
		ServiceID:       s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
	}

	if optionID != nil {
		opt, ok := s.option(*optionID)
		if !ok {
			return ResolvedService{}, fmt.Errorf("%w: option id=%d, service id=%d", ErrServiceOptionNotFound, *optionID, s.ID)
		}
		id := opt.ID
		resolved.OptionID = &id
		resolved.Name = s.Name + " - " + opt.Name
		if opt.DurationMinutes != nil {
			resolved.DurationMinutes = *opt.DurationMinutes
		}
		if opt.Price != nil {
			resolved.Price = *opt.Price
		}
	}

	if resolved.DurationMinutes <= 0 {
		return ResolvedService{}, fmt.Errorf("%w: service id=%d", ErrInvalidDuration, s.ID)
	}

	return resolved, nil
}

func (s *Service) option(id int64) (ServiceOption, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ServiceOption{}, false
}

// Barber a staff member whose calendar receives bookings
type Barber struct {
	ID     int64
	Name   string
	Active bool
}
