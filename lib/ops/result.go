package ops

import "fmt"

// Status is the outcome class of a Result.
type Status uint8

const (
	StatusOk       Status = iota // Operation succeeded, Value holds the payload
	StatusErr                    // Operation failed, Err holds the cause
	StatusNotFound               // The targeted key is absent
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusErr:
		return "error"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result is the tri-state outcome of an operation. NotFound is a normal
// outcome and is kept apart from Err.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Reply is the result type produced by executors that handle every variant.
// The payload type depends on the operation:
//
//   - Get: []byte
//   - Set, Delete, Flush: struct{}
//   - Exists: bool
//   - Keys, KeysPrefix: []string
//   - GetPrefix: map[string][]byte
//   - Values, ValuesPrefix: [][]byte
//   - DeletePrefix, Size: int
//   - CompareAndSwap: bool (whether the swap happened)
type Reply = Result[any]

// Ok creates a successful result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{Status: StatusOk, Value: v}
}

// Err creates a failed result. A nil err is replaced by a generic error so
// that IsErr always carries a cause.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	return Result[T]{Status: StatusErr, Err: err}
}

// NotFound creates a result for an absent key.
func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

func (r Result[T]) IsOk() bool       { return r.Status == StatusOk }
func (r Result[T]) IsErr() bool      { return r.Status == StatusErr }
func (r Result[T]) IsNotFound() bool { return r.Status == StatusNotFound }

// Erase converts r into a Reply, keeping status and error.
func Erase[T any](r Result[T]) Reply {
	return Reply{Status: r.Status, Value: r.Value, Err: r.Err}
}

func (r Result[T]) String() string {
	switch r.Status {
	case StatusOk:
		return fmt.Sprintf("Ok(%v)", r.Value)
	case StatusErr:
		return fmt.Sprintf("Err(%v)", r.Err)
	default:
		return "NotFound"
	}
}
