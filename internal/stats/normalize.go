// Package stats turns raw per-player box score records into typed stat
// lines and reduces them into roster aggregates.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedField is returned when an encoded field cannot be parsed.
var ErrMalformedField = errors.New("malformed field")

// Record is one raw JSON object as decoded from the upstream API.
type Record map[string]any

// ValueOr walks keys into r and returns the value found, or def when any
// key along the path is missing.
func ValueOr(r Record, def any, keys ...string) any {
	var cur any = map[string]any(r)
	for _, key := range keys {
		m, ok := asMap(cur)
		if !ok {
			return def
		}
		v, ok := m[key]
		if !ok || v == nil {
			return def
		}
		cur = v
	}
	return cur
}

// Int returns the integer at keys, or 0.
func Int(r Record, keys ...string) int {
	return toInt(ValueOr(r, 0, keys...))
}

// Float returns the number at keys, or 0.
func Float(r Record, keys ...string) float64 {
	return toFloat(ValueOr(r, 0, keys...))
}

// String returns the string at keys, or "".
func String(r Record, keys ...string) string {
	switch v := ValueOr(r, "", keys...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Bool returns the boolean at keys, or false.
func Bool(r Record, keys ...string) bool {
	v, _ := ValueOr(r, false, keys...).(bool)
	return v
}

// Sub returns the nested object at keys, or an empty Record.
func Sub(r Record, keys ...string) Record {
	if m, ok := asMap(ValueOr(r, nil, keys...)); ok {
		return Record(m)
	}
	return Record{}
}

// List returns the array of objects at keys. Non-object elements are dropped.
func List(r Record, keys ...string) []Record {
	arr, ok := ValueOr(r, nil, keys...).([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(arr))
	for _, item := range arr {
		if m, ok := asMap(item); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// TimeOnIce converts a clock-formatted time-on-ice value into seconds.
// Everything before the last three characters is hours and the last two
// characters are minutes, so "18:32" is 18h32m. A literal 0 is 0 seconds.
func TimeOnIce(v any) (int, error) {
	if isZeroNumber(v) {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: time on ice %v", ErrMalformedField, v)
	}
	if len(s) < 4 {
		return 0, fmt.Errorf("%w: time on ice %q", ErrMalformedField, s)
	}
	hours, err := strconv.Atoi(s[:len(s)-3])
	if err != nil {
		return 0, fmt.Errorf("%w: time on ice %q: %v", ErrMalformedField, s, err)
	}
	minutes, err := strconv.Atoi(s[len(s)-2:])
	if err != nil {
		return 0, fmt.Errorf("%w: time on ice %q: %v", ErrMalformedField, s, err)
	}
	return hours*3600 + minutes*60, nil
}

// SaveAttemptPair splits a "saves/attempts" value such as "21/27".
func SaveAttemptPair(v any) (saves, attempts int, err error) {
	s := fmt.Sprint(v)
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: save/attempt pair %q", ErrMalformedField, s)
	}
	saves, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: save/attempt pair %q: %v", ErrMalformedField, s, err)
	}
	attempts, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: save/attempt pair %q: %v", ErrMalformedField, s, err)
	}
	return saves, attempts, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}

func isZeroNumber(v any) bool {
	switch n := v.(type) {
	case int:
		return n == 0
	case int64:
		return n == 0
	case float64:
		return n == 0
	case json.Number:
		return n.String() == "0"
	default:
		return false
	}
}

func toInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			f, _ := val.Float64()
			return int(f)
		}
		return int(i)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
