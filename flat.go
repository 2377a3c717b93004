package utilz

import (
	"context"
	"fmt"
)

// UnexpectedErrorMessage is used when a failed parse carries no message.
const UnexpectedErrorMessage = "Unexpected error"

// FlatError is the single-message error returned by the flat helpers. It
// unwraps to the full Issues.
type FlatError struct {
	Message string
	Issues  Issues
}

func (e *FlatError) Error() string { return e.Message }

// Unwrap returns the underlying issues.
func (e *FlatError) Unwrap() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e.Issues
}

// FlatSafeParse returns the parsed value, or an error carrying one message:
// "<field>: <message>" for the first field error (fields in sorted order),
// else the first form error.
func FlatSafeParse[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	res := SafeParse(ctx, s, v)
	if res.Success {
		return res.Data, nil
	}
	var zero T
	return zero, flatten(res.Error)
}

// FlatSafeParseAsync is FlatSafeParse run through SafeParseAsync. It returns
// ctx.Err() when the context ends before the parse does.
func FlatSafeParseAsync[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	var zero T
	select {
	case res := <-SafeParseAsync(ctx, s, v):
		if res.Success {
			return res.Data, nil
		}
		return zero, flatten(res.Error)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func flatten(iss Issues) *FlatError {
	flat := iss.Flatten()
	if keys := flat.FieldKeys(); len(keys) > 0 {
		key := keys[0]
		var msg string
		if msgs := flat.FieldErrors[key]; len(msgs) > 0 {
			msg = msgs[0]
		}
		return &FlatError{Message: fmt.Sprintf("%s: %s", key, msg), Issues: iss}
	}
	if len(flat.FormErrors) > 0 && flat.FormErrors[0] != "" {
		return &FlatError{Message: flat.FormErrors[0], Issues: iss}
	}
	return &FlatError{Message: UnexpectedErrorMessage, Issues: iss}
}
