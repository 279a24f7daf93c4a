package rule

import (
	"encoding/json"
	"math"

	"github.com/c360studio/semwafer/wafer"
)

// Params is the raw parameter bag attached to a rule configuration.
// Values arrive from JSON or YAML decoding, so numbers may surface as
// int, int64, uint64, float64 or json.Number depending on the decoder.
// Accessors coerce; anything that cannot be coerced falls back to the
// default, which is how malformed parameters degrade instead of failing.
type Params map[string]any

// Int returns the integer at key, or def when absent or not coercible.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, ok := toInt(v)
	if !ok {
		return def
	}
	return n
}

// Seed returns the integer at key and whether it was present and
// coercible. Used for optional PRNG seeds where absence matters.
func (p Params) Seed(key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	n, ok := toInt(v)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

// Coords returns the coordinate list at key. Each element may be a
// two-value array or an {x, y} object; entries that parse as neither are
// skipped.
func (p Params) Coords(key string) []wafer.Coord {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]wafer.Coord, 0, len(list))
	for _, item := range list {
		if c, ok := toCoord(item); ok {
			out = append(out, c)
		}
	}
	return out
}

func toCoord(v any) (wafer.Coord, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return wafer.Coord{}, false
		}
		x, okx := toInt(t[0])
		y, oky := toInt(t[1])
		if okx && oky {
			return wafer.Coord{X: x, Y: y}, true
		}
	case map[string]any:
		x, okx := toInt(t["x"])
		y, oky := toInt(t["y"])
		if okx && oky {
			return wafer.Coord{X: x, Y: y}, true
		}
	}
	return wafer.Coord{}, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
