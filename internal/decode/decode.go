// Package decode converts server responses into numeric values.
package decode

import (
	"strconv"
	"strings"
)

// Floats decodes a whitespace separated list of numbers.
//
// Tokens that do not parse as a float are skipped without error, order is
// preserved, and the result is an empty (non-nil) slice when nothing parses.
// Invalid UTF-8 sequences never match a number and are dropped with their
// token.
func Floats(body []byte) []float64 {
	fields := strings.Fields(string(body))
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}
