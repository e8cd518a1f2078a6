package models

// SubmissionListParams carries the pagination, sorting, and filtering
// inputs for a submission listing request.
type SubmissionListParams struct {
	Search    map[string]string `json:"search,omitempty"`
	SortBy    string            `json:"sort_by,omitempty"`
	SortOrder string            `json:"sort_order,omitempty"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}

// SubmissionPage is one page of submission rows plus pagination metadata.
type SubmissionPage struct {
	Content       []map[string]any `json:"content"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
}
