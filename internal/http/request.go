package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"rateio/internal/core"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads one JSON object into dst, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// idParam parses the {id} path segment.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// int64Query parses an optional positive integer query parameter; absent
// means zero.
func int64Query(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// referenceDate parses the optional reference_date query parameter.
func referenceDate(r *http.Request) (*core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("reference_date"))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid reference_date %q", raw)
	}
	return &d, nil
}

// parseDatePtr converts an optional YYYY-MM-DD field.
func parseDatePtr(s *string) (*core.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := core.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
