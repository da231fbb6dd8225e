package contract

const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// PageRequest is a 1-based page of at most PageSize rows.
type PageRequest struct {
	Page     int `validate:"min=1"`
	PageSize int `validate:"min=1,max=100"`
}
