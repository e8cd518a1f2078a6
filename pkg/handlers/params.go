package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// ParseFormID extracts and validates the numeric form ID from the request
// path. Returns the ID and true on success, or 0 and false after writing
// an error response.
// Expects path parameter: fid
func ParseFormID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	idStr := r.PathValue("fid")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_form_id", "Invalid form ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

// ParseListParams reads pagination, sort, and search parameters from the
// query string:
//
//	page=N&size=N            zero-based page and page size
//	sort=field,ASC|DESC      single-column sort
//	search=field,value       repeatable; one filter per occurrence
//
// Malformed numeric values clamp to defaults rather than erroring.
func ParseListParams(values url.Values) models.SubmissionListParams {
	params := models.SubmissionListParams{
		PageSize: 20,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if size, err := strconv.Atoi(values.Get("size")); err == nil && size > 0 {
		params.PageSize = size
	}

	if sort := values.Get("sort"); sort != "" {
		field, order, _ := strings.Cut(sort, ",")
		params.SortBy = strings.TrimSpace(field)
		params.SortOrder = strings.TrimSpace(order)
	}

	for _, raw := range values["search"] {
		field, value, ok := strings.Cut(raw, ",")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			continue
		}
		if params.Search == nil {
			params.Search = make(map[string]string)
		}
		params.Search[field] = value
	}

	return params
}
