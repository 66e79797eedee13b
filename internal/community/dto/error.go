package dto

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Pagination is the common limit/offset query.
type Pagination struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize clamps limit into [1, max] with def as the default.
func (p Pagination) Normalize(def, max int) Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
