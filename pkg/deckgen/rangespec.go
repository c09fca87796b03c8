package deckgen

import (
	"strconv"
	"strings"
)

// ParseRangeSpec expands a range spec into its ordered index list.
//
// A spec is a comma-separated list of tokens. Each token is one value, an
// inclusive range between two values, or a range with an explicit step:
//
//	"3"        single index
//	"2-5"      ascending range   [2 3 4 5]
//	"5-2"      descending range  [5 4 3 2]
//	"2:12:4"   stepped range     [2 6 10]
//
// "-" and ":" are interchangeable separators. A value is either a decimal
// number or a letter index in bijective base-26 (a=1, z=26, aa=27), so
// spreadsheet column letters work directly. Letters and digits must not mix
// within one value. Indices are 1-based; the step is an absolute magnitude
// with the direction inferred from the endpoints. Order and repetition are
// preserved.
func ParseRangeSpec(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, NewRangeSpecError(spec, "", "empty spec")
	}

	var indices []int
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, NewRangeSpecError(spec, token, "empty token")
		}
		expanded, err := expandRangeToken(spec, token)
		if err != nil {
			return nil, err
		}
		indices = append(indices, expanded...)
	}
	return indices, nil
}

// expandRangeToken expands one token of a range spec.
func expandRangeToken(spec, token string) ([]int, error) {
	parts := splitRangeToken(token)
	if len(parts) > 3 {
		return nil, NewRangeSpecError(spec, token, "too many parts")
	}

	vals := make([]int, len(parts))
	for i, part := range parts {
		v, err := parseRangeValue(spec, part)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return vals, nil
	case 2:
		return spanIndices(vals[0], vals[1], 1), nil
	default:
		return spanIndices(vals[0], vals[1], vals[2]), nil
	}
}

// splitRangeToken splits a token on "-" and ":" separators, keeping empty
// parts so malformed tokens like "2-" are caught by value parsing.
func splitRangeToken(token string) []string {
	var parts []string
	start := 0
	for i, r := range token {
		if r == '-' || r == ':' {
			parts = append(parts, token[start:i])
			start = i + 1
		}
	}
	return append(parts, token[start:])
}

// parseRangeValue converts one value of a range token: a decimal index or a
// bijective base-26 letter index.
func parseRangeValue(spec, value string) (int, error) {
	if value == "" {
		return 0, NewRangeSpecError(spec, value, "missing value")
	}

	digits := true
	letters := true
	for _, r := range value {
		if r < '0' || r > '9' {
			digits = false
		}
		lower := r | 0x20
		if lower < 'a' || lower > 'z' {
			letters = false
		}
	}

	switch {
	case digits:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, NewRangeSpecError(spec, value, "invalid number")
		}
		if n < 1 {
			return 0, NewRangeSpecError(spec, value, "index must be positive")
		}
		return n, nil
	case letters:
		n := 0
		for _, r := range strings.ToLower(value) {
			n = n*26 + int(r-'a') + 1
		}
		return n, nil
	default:
		return 0, NewRangeSpecError(spec, value, "mixed letters and digits")
	}
}

// spanIndices lists the indices from first to last inclusive, stepping by
// the given magnitude in the inferred direction.
func spanIndices(first, last, step int) []int {
	var out []int
	if first <= last {
		for i := first; i <= last; i += step {
			out = append(out, i)
		}
	} else {
		for i := first; i >= last; i -= step {
			out = append(out, i)
		}
	}
	return out
}
