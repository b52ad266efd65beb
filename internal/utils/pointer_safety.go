package utils

// Value dereferences p, returning the zero value when p is nil. Handy for
// optional API fields carried as pointers.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to v, for building partial-update payloads inline.
func Ptr[T any](v T) *T {
	return &v
}
