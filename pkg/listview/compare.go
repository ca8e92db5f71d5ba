package listview

import (
	"encoding/json"
	"strconv"
	"strings"
)

// kind ranks values of different types: numbers, then bools, then strings.
// Missing values are handled by the caller so they always sort last.
type kind int

const (
	kindNumber kind = iota
	kindBool
	kindString
	kindOther
)

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func kindOf(v any) kind {
	if _, ok := number(v); ok {
		return kindNumber
	}
	switch v.(type) {
	case bool:
		return kindBool
	case string:
		return kindString
	}
	return kindOther
}

// compareValues orders two present values by their natural ordering.
// A number and a numeric string compare numerically, since edited cells
// come back from input fields as text.
func compareValues(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)

	if ka != kb {
		if af, bf, ok := numericPair(a, b); ok {
			return compareFloat(af, bf)
		}
		if ka < kb {
			return -1
		}
		return 1
	}

	switch ka {
	case kindNumber:
		af, _ := number(a)
		bf, _ := number(b)
		return compareFloat(af, bf)
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindString:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(Text(a), Text(b))
	}
}

func numericPair(a, b any) (float64, float64, bool) {
	af, ok := number(a)
	if !ok {
		s, isStr := a.(string)
		if !isStr {
			return 0, 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, 0, false
		}
		af = f
	}
	bf, ok := number(b)
	if !ok {
		s, isStr := b.(string)
		if !isStr {
			return 0, 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, 0, false
		}
		bf = f
	}
	return af, bf, true
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
