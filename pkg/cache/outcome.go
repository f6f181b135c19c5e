package cache

// Outcome is the result of one fetch: either a value or an error.
// It is immutable once constructed.
type Outcome[V any] struct {
	value V
	err   error
}

// Success wraps a fetched value.
func Success[V any](value V) Outcome[V] {
	return Outcome[V]{value: value}
}

// Failure wraps a fetch error. A nil err still produces a failure
// so the outcome is never mistaken for a zero-value success.
func Failure[V any](err error) Outcome[V] {
	if err == nil {
		err = errNilFailure
	}
	return Outcome[V]{err: err}
}

// IsFailure reports whether the outcome carries an error.
func (o Outcome[V]) IsFailure() bool {
	return o.err != nil
}

// Value returns the fetched value (zero value for failures).
func (o Outcome[V]) Value() V {
	return o.value
}

// Err returns the failure error, or nil for successes.
func (o Outcome[V]) Err() error {
	return o.err
}

// Unpack returns the outcome in Go's (value, error) shape.
func (o Outcome[V]) Unpack() (V, error) {
	return o.value, o.err
}

// label is used for metric labels.
func (o Outcome[V]) label() string {
	if o.IsFailure() {
		return "failure"
	}
	return "success"
}
