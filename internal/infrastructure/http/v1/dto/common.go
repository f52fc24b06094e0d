// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse contains a created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetDeletionMarkRequest toggles the deletion mark.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}
