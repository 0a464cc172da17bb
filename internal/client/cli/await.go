package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/boulin/eventverse/internal/client/resource"
)

// await returns the first settled envelope of a stream and releases it.
func await[T any](ctx context.Context, stream func(context.Context) <-chan resource.Resource[T]) resource.Resource[T] {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for r := range stream(ctx) {
		if !r.IsLoading() {
			return r
		}
	}
	msg := "cancelled"
	if err := ctx.Err(); err != nil {
		msg = err.Error()
	}
	return resource.Error[T](msg, 0)
}

// envelopeError turns an Error envelope into an error for the terminal.
func envelopeError[T any](r resource.Resource[T]) error {
	if r.Code == 0 {
		return errors.New(r.Message)
	}
	return fmt.Errorf("%s (%d)", r.Message, r.Code)
}
