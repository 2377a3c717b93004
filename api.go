package utilz

import (
	"context"
	"errors"
)

// Schema is the contract every helper in this module builds on. Parse turns an
// unknown input into T and returns Issues when the input does not conform.
type Schema[T any] interface {
	Parse(ctx context.Context, v any) (T, error)
}

// ValueValidator is implemented by schemas that can verify a value already
// typed as T without any conversion.
type ValueValidator[T any] interface {
	ValidateValue(ctx context.Context, v T) error
}

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys.
	UnknownStrict                           // Reject unknown keys with an error.
	UnknownPassthrough                      // Keep unknown keys for the engine to see.
)

// ObjectSchema is a Schema over a keyed record (a struct or a map).
type ObjectSchema[T any] interface {
	Schema[T]
	// Keys lists the known keys in declaration order.
	Keys() []string
	UnknownPolicy() UnknownPolicy
	// ParseExcept parses v while skipping validation of the given keys.
	ParseExcept(ctx context.Context, v any, keys ...string) (T, error)
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc[T any] func(ctx context.Context, v any) (T, error)

// Parse calls f.
func (f SchemaFunc[T]) Parse(ctx context.Context, v any) (T, error) { return f(ctx, v) }

// ErrNilSchema is returned by helpers handed a nil schema.
var ErrNilSchema = errors.New("utilz: nil schema")

// SafeParse parses v and reshapes the outcome into a Result.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) Result[T] {
	if s == nil {
		var zero T
		return SPR(zero, ErrNilSchema)
	}
	out, err := s.Parse(ctx, v)
	return SPR(out, err)
}

// SafeParseAsync runs the parse on its own goroutine. The returned channel
// yields exactly one Result and is then closed.
func SafeParseAsync[T any](ctx context.Context, s Schema[T], v any) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		ch <- SafeParse(ctx, s, v)
	}()
	return ch
}

// Is returns true if v conforms to the schema s.
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return SafeParse(ctx, s, v).Success
}
