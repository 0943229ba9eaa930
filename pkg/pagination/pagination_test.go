package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews", nil)
	p := FromRequest(r)

	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?limit=50&offset=40", nil)
	p := FromRequest(r)

	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 40, p.Offset)
}

func TestFromRequest_ClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?limit=500", nil)
	p := FromRequest(r)

	assert.Equal(t, MaxLimit, p.Limit)
}

func TestFromRequest_NegativeValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?limit=-5&offset=-10", nil)
	p := FromRequest(r)

	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_NonNumericIgnored(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?limit=abc&offset=xyz", nil)
	p := FromRequest(r)

	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestNewResult_NilItems(t *testing.T) {
	res := NewResult[string](nil, 0)

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Count)
}

func TestNewResult_CountIndependentOfPage(t *testing.T) {
	res := NewResult([]int{1, 2, 3}, 42)

	assert.Len(t, res.Items, 3)
	assert.Equal(t, 42, res.Count)
}
