package utilz

import "context"

// Typed restricts a schema's parsers to input already typed as T. It is handy
// for re-validating values built in code, where passing the wrong type should
// be a compile error rather than an issue.
type Typed[T any] struct {
	Schema Schema[T]
}

// TypedParsers wraps s.
func TypedParsers[T any](s Schema[T]) Typed[T] { return Typed[T]{Schema: s} }

// Parse validates v. Schemas implementing ValueValidator check v in place;
// others parse it like any other input.
func (t Typed[T]) Parse(ctx context.Context, v T) (T, error) {
	if vv, ok := t.Schema.(ValueValidator[T]); ok {
		if err := vv.ValidateValue(ctx, v); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	}
	return t.Schema.Parse(ctx, v)
}

// SafeParse is Parse reshaped into a Result.
func (t Typed[T]) SafeParse(ctx context.Context, v T) Result[T] {
	out, err := t.Parse(ctx, v)
	return SPR(out, err)
}

// ParseAsync runs Parse on its own goroutine.
func (t Typed[T]) ParseAsync(ctx context.Context, v T) (T, error) {
	select {
	case res := <-t.SafeParseAsync(ctx, v):
		if res.Success {
			return res.Data, nil
		}
		var zero T
		return zero, res.Error
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// SafeParseAsync runs SafeParse on its own goroutine. The channel yields one
// Result and is then closed.
func (t Typed[T]) SafeParseAsync(ctx context.Context, v T) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		ch <- t.SafeParse(ctx, v)
	}()
	return ch
}
