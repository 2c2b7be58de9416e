package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindInsufficientStock
	KindInsufficientPrinterStock
	KindNotFound
	KindConflict
	KindUnauthorized
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInsufficientPrinterStock:
		return "insufficient_printer_stock"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

var (
	ErrInsufficientStock        = errors.New("insufficient stock in storage")
	ErrInsufficientPrinterStock = errors.New("insufficient stock in printer")
	ErrUnknownStorageItem       = errors.New("unknown storage item")
	ErrPrinterNotFound          = errors.New("printer not found")
	ErrCabinetNotFound          = errors.New("cabinet not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrDuplicate                = errors.New("unique constraint violation")
	ErrNoUsageHistory           = errors.New("no usage history")
	ErrInvalidCredentials       = errors.New("invalid username or password")
	ErrLastAdmin                = errors.New("cannot remove the last admin")
)

// Error is returned by every service operation. Err is the sentinel or the
// underlying driver error and is reachable through errors.Is / errors.As.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a service error, or KindStore for anything else.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStore
}

func validationError(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op string, sentinel error, msg string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg, Err: sentinel}
}

// wrapStoreError passes service errors through and classifies driver errors.
func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Op: op, Msg: ErrDuplicate.Error(), Err: errors.Join(ErrDuplicate, err)}
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}
