package domain

// PageResult is one page of a server-side listing.
type PageResult[T any] struct {
	Content    []T `json:"content"`
	TotalPages int `json:"totalPages"`
}
