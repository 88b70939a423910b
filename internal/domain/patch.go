package domain

// Patch is a single optional field of a partial update. Set is false when the
// key was absent from the payload.
type Patch[T any] struct {
	Set   bool
	Value T
}

// Some returns a set patch holding v.
func Some[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: v}
}

// ApplyTo overwrites *dst when the patch is set.
func (p Patch[T]) ApplyTo(dst *T) {
	if p.Set {
		*dst = p.Value
	}
}
