package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"orderId", "orderid"},
		{"XMLParser", "xmlparser"},
		{"__0", "0"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"OrderID", []string{"order", "id"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"price_cents", []string{"price", "cents"}},
		{"width2", []string{"width", "2"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenizeIdent(tt.input))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"widht", "width", 2},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 1.0, NormalizedSimilarity("UserID", "user_id"), 1e-9)
}

func TestRank(t *testing.T) {
	list := Rank("Width", []string{"height", "x", "width", "widths"})
	assert.Equal(t, "width", list[0].Name)
	assert.True(t, list[0].Exact)
	assert.Equal(t, "widths", list[1].Name)

	exact := list.Exact()
	assert.Len(t, exact, 1)
}

func TestSuggest(t *testing.T) {
	names := []string{"width", "height", "x", "y"}

	assert.Equal(t, "width", Closest("widht", names))
	assert.Equal(t, "", Closest("colour", names))
	assert.Equal(t, []string{"height"}, Suggest("heigth", names))
	assert.Nil(t, Suggest("anything", nil))
}
