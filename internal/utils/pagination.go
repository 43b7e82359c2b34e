// Package utils holds small transport-agnostic helpers shared by handlers.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def on empty or invalid input.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
