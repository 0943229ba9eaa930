package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is used when the request does not specify a limit.
	DefaultLimit = 20
	// MaxLimit is the hard cap; larger requested limits are clamped to it.
	MaxLimit = 100
)

// Params holds limit/offset pagination parameters extracted from query strings.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultParams returns the default pagination window.
func DefaultParams() Params {
	return Params{Limit: DefaultLimit, Offset: 0}
}

// Clamp normalizes the parameters in place: non-positive limits fall back to
// the default, limits above MaxLimit are clamped, negative offsets become 0.
func (p *Params) Clamp() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// FromRequest extracts limit/offset parameters from an HTTP request and
// normalizes them via Clamp.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Offset = n
		}
	}

	p.Clamp()
	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewResult creates a paginated result with a concrete (never nil) item slice.
func NewResult[T any](items []T, count int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Count: count, Items: items}
}
