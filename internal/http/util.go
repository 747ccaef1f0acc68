package httpx

import (
	"net/http"
	"strconv"

	"github.com/target/mmk-unsubscribe/internal/domain/model"
	apperrors "github.com/target/mmk-unsubscribe/internal/errors"
)

// queryInt returns the integer value of a query param, or def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.ValidationField(key, "must be an integer")
	}
	return i, nil
}

// parseJobListOptions reads limit/offset for job listings. Out-of-range
// values are clamped; non-integers are a validation error.
func parseJobListOptions(r *http.Request) (model.JobListOptions, error) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		return model.JobListOptions{}, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return model.JobListOptions{}, err
	}
	return model.JobListOptions{
		Limit:  min(max(limit, 1), maxListLimit),
		Offset: max(offset, 0),
	}, nil
}
