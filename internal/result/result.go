// Package result defines the tagged outcome returned by every service and use-case operation.
package result

import (
	"errors"

	"github.com/and161185/taskmaster/internal/errs"
)

// State tags a Result.
type State int

const (
	// StateLoading marks an intermediate emission of a live stream.
	StateLoading State = iota
	StateSuccess
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// Result is Loading, Success(value) or Error(err). The zero value is Loading.
type Result[T any] struct {
	state State
	value T
	err   *errs.Error
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{state: StateSuccess, value: v}
}

// Failure wraps an error. Errors that are not *errs.Error get KindUnknown and keep their text.
func Failure[T any](err error) Result[T] {
	var e *errs.Error
	if !errors.As(err, &e) {
		msg := "unknown error"
		if err != nil {
			msg = err.Error()
		}
		e = &errs.Error{Kind: errs.KindUnknown, Message: msg, Err: err}
	}
	return Result[T]{state: StateError, err: e}
}

// Loading returns the intermediate marker.
func Loading[T any]() Result[T] { return Result[T]{} }

// State returns the tag.
func (r Result[T]) State() State { return r.state }

// IsSuccess reports whether r is Success.
func (r Result[T]) IsSuccess() bool { return r.state == StateSuccess }

// IsError reports whether r is Error.
func (r Result[T]) IsError() bool { return r.state == StateError }

// IsLoading reports whether r is Loading.
func (r Result[T]) IsLoading() bool { return r.state == StateLoading }

// Value returns the value and whether r is Success.
func (r Result[T]) Value() (T, bool) { return r.value, r.state == StateSuccess }

// Err returns the error of an Error result, nil otherwise.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Message returns the display text of an Error result.
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Message
}

// Kind returns the error kind of an Error result, KindUnknown otherwise.
func (r Result[T]) Kind() errs.Kind {
	if r.err == nil {
		return errs.KindUnknown
	}
	return r.err.Kind
}

// Match calls exactly one handler according to the state. All handlers are required.
func (r Result[T]) Match(onLoading func(), onSuccess func(T), onError func(*errs.Error)) {
	switch r.state {
	case StateSuccess:
		onSuccess(r.value)
	case StateError:
		onError(r.err)
	default:
		onLoading()
	}
}

// Map transforms the value of a Success result and passes other states through.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	switch r.state {
	case StateSuccess:
		return Success(f(r.value))
	case StateError:
		return Result[U]{state: StateError, err: r.err}
	default:
		return Loading[U]()
	}
}
