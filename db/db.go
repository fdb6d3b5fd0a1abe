package db

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage оборачивает подключение к Postgres для доступа к данным
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Ошибки уровня хранилища. Обработчики переводят их в HTTP статусы.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrSelfTrade       = errors.New("cannot order own offer")
	ErrInsufficientLot = errors.New("not enough lots available")
)

// ValidationError описывает отклонённый клиентский ввод
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation сообщает, является ли ошибка ошибкой валидации ввода
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
