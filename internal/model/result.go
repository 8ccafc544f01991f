package model

// Envelope is the storefront API response shape.
type Envelope[T any] struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Error     string            `json:"error,omitempty"`
	Data      T                 `json:"data"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// Result is embedded by enterprise API responses, which put their payload
// next to the success flag instead of under data.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r Result) Outcome() Result { return r }

// Reason returns the most specific human message the API sent.
func (r Result) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Page is a paginated enterprise list. Depending on the endpoint the rows
// come back under data, users, products or compras.
type Page[T any] struct {
	Result
	Data       []T        `json:"data,omitempty"`
	Users      []T        `json:"users,omitempty"`
	Products   []T        `json:"products,omitempty"`
	Compras    []T        `json:"compras,omitempty"`
	Pagination Pagination `json:"pagination"`
}

func (p *Page[T]) Rows() []T {
	switch {
	case len(p.Data) > 0:
		return p.Data
	case len(p.Users) > 0:
		return p.Users
	case len(p.Products) > 0:
		return p.Products
	case len(p.Compras) > 0:
		return p.Compras
	}
	return []T{}
}
