// Package apperr attaches an HTTP status and a stable machine code to the
// errors the dashboard returns to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a dashboard error as seen by an HTTP client.
type Error struct {
	Code    string
	Status  int
	Message string
	Fields  map[string]any
	Err     error
}

// Body is the JSON shape of an error response.
type Body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

var (
	ErrBadQuery      = New("bad_request", http.StatusBadRequest, "")
	ErrNotFound      = New("not_found", http.StatusNotFound, "")
	ErrInternal      = New("internal_error", http.StatusInternalServerError, "")
	ErrNoDataset     = New("dataset_unavailable", http.StatusServiceUnavailable, "dataset is not loaded")
	ErrRender        = New("render_error", http.StatusInternalServerError, "")
	ErrExport        = New("export_error", http.StatusInternalServerError, "")
	ErrConfiguration = New("configuration_error", http.StatusInternalServerError, "")
)

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code, so errors.Is(err, ErrBadQuery) holds for any copy made
// from ErrBadQuery.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.Code == t.Code
}

func (e *Error) clone() *Error {
	c := *e
	if e.Fields != nil {
		c.Fields = make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}

// Wrap returns a copy of kind carrying cause. A non-empty message replaces
// the kind's message. Wrap(nil, ...) is nil.
func Wrap(cause error, kind *Error, message string) *Error {
	if cause == nil {
		return nil
	}
	if kind == nil {
		kind = ErrInternal
	}
	e := kind.clone()
	e.Err = cause
	if message != "" {
		e.Message = message
	}
	return e
}

// WithField returns a copy of e with one more client-visible field.
func (e *Error) WithField(key string, value any) *Error {
	c := e.clone()
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	c.Fields[key] = value
	return c
}

// BadParam reports a query parameter that could not be parsed.
func BadParam(param, raw, message string, cause error) *Error {
	if cause == nil {
		cause = errors.New(message)
	}
	return Wrap(cause, ErrBadQuery, message).
		WithField("param", param).
		WithField("value", raw)
}

func from(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// Status is the HTTP status for err, 500 for untyped errors.
func Status(err error) int {
	if e, ok := from(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Code is the machine code for err, internal_error for untyped errors.
func Code(err error) string {
	if e, ok := from(err); ok && e.Code != "" {
		return e.Code
	}
	return ErrInternal.Code
}

// Payload is the response body written for err.
func Payload(err error) Body {
	if err == nil {
		return Body{}
	}
	e, ok := from(err)
	if !ok {
		return Body{Code: ErrInternal.Code, Message: err.Error()}
	}
	b := Body{Code: Code(e), Message: e.Message, Fields: e.Fields}
	if b.Message == "" {
		b.Message = e.Error()
	}
	return b
}
