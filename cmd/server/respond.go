package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/store"
	"github.com/Simplici0/importhub/internal/validate"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string               `json:"error"`
	Fields validate.FieldErrors `json:"fields,omitempty"`
}

// badRequest marks client input errors that are not field validation.
type badRequest struct {
	msg string
}

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeError maps domain errors to status codes. Internal errors are logged
// and reported without detail.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fields validate.FieldErrors
		bad    badRequest
	)
	status := http.StatusInternalServerError
	body := errorResponse{Error: "internal error"}

	switch {
	case errors.As(err, &fields):
		status = http.StatusBadRequest
		body = errorResponse{Error: "validation failed", Fields: fields}
	case errors.As(err, &bad):
		status = http.StatusBadRequest
		body.Error = bad.msg
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, errUnauthenticated):
		status = http.StatusUnauthorized
		body.Error = errUnauthenticated.Error()
		if errors.Is(err, ErrInvalidCredentials) {
			body.Error = ErrInvalidCredentials.Error()
		}
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
		body.Error = errForbidden.Error()
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		body.Error = "not found"
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
		body.Error = "conflict"
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
		body.Error = err.Error()
	default:
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	s.writeJSON(w, r, status, body)
}

// decodeJSON reads a JSON body into dst. Validation is left to the caller.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequestf("invalid json body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestf("invalid %s", name)
	}
	return id, nil
}

// bind decodes and validates a JSON request body.
func (s *server) bind(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return s.validator.Struct(dst)
}
