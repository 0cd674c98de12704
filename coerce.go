package poststates

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// coerceID converts a resolved configuration value into an item identifier.
// Missing, nil, or non-numeric values report ok=false and therefore never
// match — notably, they do not collapse to 0, so items with identifier 0
// cannot pick up spurious labels.
func coerceID(value any) (int64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return coerceFloat(float64(v))
	case float64:
		return coerceFloat(v)
	case json.Number:
		return coerceString(v.String())
	case string:
		return coerceString(v)
	default:
		return 0, false
	}
}

func coerceFloat(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v > math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}

func coerceString(v string) (int64, bool) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return id, true
	}
	// Stored values sometimes round-trip through float encodings ("42.0").
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return coerceFloat(f)
	}
	return 0, false
}
