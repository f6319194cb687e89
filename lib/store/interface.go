package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a key–value store.
// Write operations return only an error (nil on success), read operations
// return the requested data along with an error (nil on success).
// An absent key is never reported as an error.
type IStore interface {
	// Get returns a copy of the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value []byte, loaded bool, err error)
	// Set inserts or updates a key–value pair.
	Set(key string, value []byte) (err error)
	// Delete removes a key–value pair. Deleting an absent key succeeds.
	Delete(key string) (err error)
	// Has returns whether a key exists in the store.
	Has(key string) (loaded bool, err error)
	// Clear removes every key–value pair.
	Clear() (err error)
	// Keys returns a snapshot of all keys in no particular order.
	Keys() (keys []string, err error)
	// KeysPrefix returns a snapshot of all keys starting with prefix.
	KeysPrefix(prefix string) (keys []string, err error)
	// GetPrefix returns copies of all key–value pairs whose key starts with prefix.
	GetPrefix(prefix string) (entries map[string][]byte, err error)
	// DeletePrefix removes all keys starting with prefix and returns how many were removed.
	DeletePrefix(prefix string) (removed int, err error)
	// Values returns copies of all values in no particular order.
	Values() (values [][]byte, err error)
	// ValuesPrefix returns copies of the values of all keys starting with prefix.
	ValuesPrefix(prefix string) (values [][]byte, err error)
	// Size returns the number of keys.
	Size() (size int, err error)
	// CompareAndSwap sets key to newValue if its current value equals oldValue.
	// A nil oldValue requires the key to be absent, a nil newValue deletes the key on match.
	CompareAndSwap(key string, oldValue, newValue []byte) (swapped bool, err error)
	// Info returns metadata about the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	Info() (info Info, err error)
}

// Info describes the content of a store.
type Info struct {
	Keys         int             `json:"keys"`
	ValueBytes   int64           `json:"value_bytes"`
	Distribution ValueSizeReport `json:"value_size_distribution"`
	Metadata     interface{}     `json:"metadata,omitempty"`
}

// ValueSizeReport summarizes the sizes of values written to a store.
type ValueSizeReport struct {
	Count int64   `json:"count"`
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P99   float64 `json:"p99"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface. Only the message is returned, the
// code is meant for programmatic checks.
func (e *Error) Error() string {
	return e.Msg
}

// Is reports whether target is an *Error with the same code and message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Msg == other.Msg
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewValidationError creates an error for malformed input.
func NewValidationError(format string, args ...interface{}) *Error {
	return NewError(RetCInvalidOperation, fmt.Sprintf(format, args...))
}

// ErrNotImplemented is returned for operations that have no executor wiring.
var ErrNotImplemented = NewError(RetCUnsupportedOperation, "command not implemented")

// CodeOf returns the RetCode of err, RetCSuccess for nil and RetCInternalError
// for errors that are not store errors.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation has no executor wiring.
	RetCInvalidOperation                    // 3: Invalid operation or malformed input.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
