package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// dateParam reads an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (domain.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return domain.MinDate, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return domain.MinDate, apperrors.NewValidationError(fmt.Sprintf("%s must be YYYY-MM-DD", name), err)
	}
	return d, nil
}

// intParam reads an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be an integer", name), err)
	}
	return n, nil
}

// boolParam reads an optional boolean query parameter.
func boolParam(r *http.Request, name string, def bool) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.NewValidationError(fmt.Sprintf("%s must be true or false", name), err)
	}
	return b, nil
}

// yearsParam reads a comma separated list of years.
func yearsParam(r *http.Request, name string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(r.URL.Query().Get(name), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s must list years", name), err)
		}
		out = append(out, y)
	}
	return out, nil
}
