package listview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"numbers", float64(2), float64(10), -1},
		{"mixed numeric types", 3, float64(3), 0},
		{"json number", json.Number("12.5"), float64(12), 1},
		{"strings lexical", "Chang", "Chais", 1},
		{"numeric string against number", "18", float64(9), 1},
		{"number before text", float64(100), "abc", -1},
		{"text after number", "abc", float64(1), 1},
		{"bools", false, true, -1},
		{"equal strings", "x", "x", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareValues(tt.a, tt.b))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "18", Text(float64(18)))
	assert.Equal(t, "21.35", Text(21.35))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "Chais", Text("Chais"))
}
