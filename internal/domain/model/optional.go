package model

// Optional holds a value that may be absent. The zero value is absent,
// which keeps "no measurement" distinct from a measured zero.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a decoded pointer field; nil is absent.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if !o.Valid {
		return def
	}
	return o.Value
}
