// Package resource provides the three-state envelope every client data
// operation reports through: Loading, Success with a payload, or Error with
// a message and status code.
package resource

import (
	"context"
	"fmt"
)

type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Resource is a tagged value. Data is only meaningful for StatusSuccess;
// Message and Code only for StatusError.
type Resource[T any] struct {
	Status  Status
	Data    T
	Message string
	Code    int
}

func Loading[T any]() Resource[T] {
	return Resource[T]{Status: StatusLoading}
}

func Success[T any](v T) Resource[T] {
	return Resource[T]{Status: StatusSuccess, Data: v}
}

// Error builds a failed envelope. Code is the HTTP status, or 0 for
// transport and local failures.
func Error[T any](msg string, code int) Resource[T] {
	return Resource[T]{Status: StatusError, Message: msg, Code: code}
}

func (r Resource[T]) IsLoading() bool { return r.Status == StatusLoading }
func (r Resource[T]) IsSuccess() bool { return r.Status == StatusSuccess }
func (r Resource[T]) IsError() bool   { return r.Status == StatusError }

func (r Resource[T]) String() string {
	switch r.Status {
	case StatusSuccess:
		return fmt.Sprintf("success(%v)", r.Data)
	case StatusError:
		return fmt.Sprintf("error(%d: %s)", r.Code, r.Message)
	default:
		return r.Status.String()
	}
}

// Map transforms the payload of a successful envelope. Loading and Error
// pass through with their message and code.
func Map[T, U any](r Resource[T], f func(T) U) Resource[U] {
	if r.Status == StatusSuccess {
		return Success(f(r.Data))
	}
	return Resource[U]{Status: r.Status, Message: r.Message, Code: r.Code}
}

// MapStream applies Map to every envelope of in. The returned channel is
// closed when in is closed or ctx is done.
func MapStream[T, U any](ctx context.Context, in <-chan Resource[T], f func(T) U) <-chan Resource[U] {
	out := make(chan Resource[U])
	go func() {
		defer close(out)
		for r := range in {
			select {
			case out <- Map(r, f):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
