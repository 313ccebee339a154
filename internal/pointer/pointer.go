// Package pointer takes the address of values, for the optional fields of contract arguments.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
