package utils

func Ptr[T any](v T) *T {
	return &v
}

// CopyPtr returns a new pointer to a copy of *v, or nil.
func CopyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
