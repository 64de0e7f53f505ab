package domain

import "fmt"

// Result is the outcome of a fallible operation: exactly one of Value and
// Err is meaningful. Callers branch on Err instead of unwinding.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail returns a failed Result.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// IsOk reports whether the operation succeeded.
func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unwrap returns the pair in Go's (value, error) form.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Await runs fn and captures its outcome. A panic inside fn is recovered
// and reported as an error, so nothing escapes as an unhandled fault.
func Await[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Fail[T](fmt.Errorf("%w: %v", ErrPanic, p))
		}
	}()

	v, err := fn()
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}
