package domain

// Optional distinguishes a patch field that is absent from one that is
// explicitly set, including set-to-null for nullable columns.
// The zero value means "leave unchanged".
type Optional[T any] struct {
	Set   bool
	Value *T // nil clears the column
}

// Some returns an Optional set to the given value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the column.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Apply overwrites dst when the Optional is set.
func (o Optional[T]) Apply(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}
