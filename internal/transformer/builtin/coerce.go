package builtin

import (
	"math"
	"strconv"
	"strings"
)

// CoerceFloat converts a raw cell to a float. Strings may use either '.' or a
// lone ',' as the decimal separator; when both appear, ',' is a thousands
// separator. Anything unparseable, NaN or infinite yields nil.
func CoerceFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if strings.Contains(s, ",") {
			if strings.Contains(s, ".") {
				s = strings.ReplaceAll(s, ",", "")
			} else {
				s = strings.Replace(s, ",", ".", 1)
			}
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CoerceInt converts a raw cell to an integer. Thousands separators (',' or
// ' ') are tolerated, as are integral decimals such as "123.0". Fractional or
// unparseable values yield nil.
func CoerceInt(v any) *int64 {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil
		}
		n = int64(t)
	case string:
		s := strings.TrimSpace(t)
		s = strings.NewReplacer(",", "", " ", "").Replace(s)
		if s == "" {
			return nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			n = i
			break
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil
		}
		n = int64(f)
	default:
		return nil
	}
	return &n
}
