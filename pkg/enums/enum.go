// Package enums holds the string-backed value sets persisted in the
// database and carried on outbox events.
package enums

import (
	"fmt"
	"slices"
)

func parse[T ~string](kind, value string, known []T) (T, error) {
	if v := T(value); slices.Contains(known, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
