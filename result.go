package utilz

// Result is a safe-parse outcome. Exactly one side is populated: Data when
// Success is true, Error otherwise.
type Result[T any] struct {
	Success bool
	Data    T
	Error   Issues
}

// SPR (SafeParseResult) reshapes a (value, error) pair returned by Parse into a
// Result.
//
//	res := utilz.SPR(schema.Parse(ctx, in))
//	if res.Success { use(res.Data) } else { show(res.Error.Flatten().FieldErrors) }
//
// An error that is not Issues is kept as a single form-level custom issue whose
// Cause is the original error.
func SPR[T any](v T, err error) Result[T] {
	if err == nil {
		return Result[T]{Success: true, Data: v}
	}
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		iss = Issues{{Path: "/", Code: CodeCustom, Message: err.Error(), Cause: err}}
	}
	return Result[T]{Error: iss}
}

// Value returns the parsed data and whether the parse succeeded.
func (r Result[T]) Value() (T, bool) { return r.Data, r.Success }

// Err returns the issues as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success || len(r.Error) == 0 {
		return nil
	}
	return r.Error
}

// GetErrorMessage returns the message of the first issue, or "" on success.
func GetErrorMessage[T any](r Result[T]) string {
	if r.Success || len(r.Error) == 0 {
		return ""
	}
	return r.Error[0].Message
}

// DataOr returns the parsed data, or the value fn derives from the issues.
func DataOr[T any](r Result[T], fn func(Issues) T) T {
	if r.Success {
		return r.Data
	}
	return fn(r.Error)
}
