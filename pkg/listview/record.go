package listview

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NewRow is the overlay key of the synthetic row used to draft a new record.
const NewRow = "new"

// Record is one row of one entity type. Values are scalars as decoded from JSON.
type Record map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies every field of partial into r.
func (r Record) Merge(partial Record) {
	for k, v := range partial {
		r[k] = v
	}
}

// Key normalizes an identifier value so that 7, 7.0 and "7" address the same row.
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return Text(v)
	}
}

// Text renders a field value the way it is matched by filters.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
