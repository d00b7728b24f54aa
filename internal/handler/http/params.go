package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// optionalQuery returns a pointer to a non-empty query value.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// pagination reads page and limit. Zero means "use the default" and is
// resolved by the filter's Validate.
func pagination(r *http.Request) (page, limit int, err error) {
	var errs validator.ValidationErrors

	if p := r.URL.Query().Get("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil {
			errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a number"})
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a number"})
		}
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return page, limit, nil
}
