package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"name-matcher/internal/utils"
)

// formValue returns the trimmed field, or def when the client did not send
// it at all. An explicitly empty field stays empty.
func formValue(r *http.Request, key, def string) string {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	if vs, ok := r.Form[key]; ok && len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return def
}

func atoi(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseThreshold accepts "0.85", "0,85" and "85%". Range is checked by the matcher.
func parseThreshold(s string, def float64) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	f, ok := utils.ParseDecimal(s)
	if !ok {
		return 0, fmt.Errorf("invalid threshold %q", s)
	}
	return f, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
