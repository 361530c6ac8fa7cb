package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/types"
)

// ValidationError ошибка одного поля запроса
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors все ошибки валидации запроса
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("hhmm", validateTimeString)
		_ = validate.RegisterValidation("date", validateDate)
		_ = validate.RegisterValidation("payment_method", validatePaymentMethod)
	})
	return validate
}

func validateTimeString(fl validator.FieldLevel) bool {
	_, err := types.NewTimeStringFromString(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := domain.DefaultBookingPolicy().ParseDate(fl.Field().String())
	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return domain.PaymentMethod(fl.Field().String()).IsValid()
}

// Validate проверяет структуру запроса по тегам validate
func Validate(req interface{}) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	result := make(ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = "обязательное поле"
		case "gt", "min":
			message = fmt.Sprintf("должно быть больше %s", fe.Param())
		case "max":
			message = fmt.Sprintf("не более %s символов", fe.Param())
		case "hhmm":
			message = "ожидается время в формате HH:MM"
		case "date":
			message = "ожидается дата в формате YYYY-MM-DD"
		case "payment_method":
			message = "неизвестный способ оплаты"
		case "oneof":
			message = fmt.Sprintf("допустимые значения: %s", fe.Param())
		}
		result = append(result, ValidationError{Field: fe.Field(), Message: message})
	}

	return result
}
