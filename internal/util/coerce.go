package util

import "strconv"

// ToInt converts loosely typed JSON values to an int. JSON decoding yields
// float64 for every number, so integer-valued floats are accepted; anything
// else reports false.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
	case float32:
		if n == float32(int64(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// ToBool converts loosely typed JSON values to a bool.
func ToBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// ToString reports the value as a string when it is one.
func ToString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ClampInt bounds v to the inclusive range [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
