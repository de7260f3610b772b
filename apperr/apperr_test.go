package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := errors.New(`strconv.Atoi: parsing "abc": invalid syntax`)
	err := Wrap(cause, ErrBadQuery, "year must be an integer")

	if got := Status(err); got != http.StatusBadRequest {
		t.Fatalf("Status() = %d, want %d", got, http.StatusBadRequest)
	}
	if got := Code(err); got != "bad_request" {
		t.Fatalf("Code() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped error lost its cause")
	}
	if !errors.Is(fmt.Errorf("handler: %w", err), ErrBadQuery) {
		t.Fatalf("errors.Is should match by code through wrapping")
	}
	if ErrBadQuery.Message != "" {
		t.Fatalf("Wrap must not mutate the base error")
	}
	if Wrap(nil, ErrBadQuery, "x") != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestBadParam(t *testing.T) {
	err := BadParam("year", "abc", "year must be an integer", nil)
	if err.Fields["param"] != "year" || err.Fields["value"] != "abc" {
		t.Fatalf("Fields = %v", err.Fields)
	}
	if ErrBadQuery.Fields != nil {
		t.Fatalf("BadParam must not mutate ErrBadQuery")
	}
	if got := Status(err); got != http.StatusBadRequest {
		t.Fatalf("Status() = %d", got)
	}
}

func TestPayload(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Body
	}{
		{"nil", nil, Body{}},
		{"plain", errors.New("boom"), Body{Code: "internal_error", Message: "boom"}},
		{"typed", ErrNoDataset, Body{Code: "dataset_unavailable", Message: "dataset is not loaded"}},
		{"wrapped without message", Wrap(errors.New("disk full"), ErrExport, ""), Body{Code: "export_error", Message: "export_error: disk full"}},
		{"fields", ErrBadQuery.WithField("param", "year"), Body{
			Code: "bad_request", Message: "bad_request", Fields: map[string]any{"param": "year"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Payload(tt.err)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("Payload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_untyped(t *testing.T) {
	if got := Status(errors.New("x")); got != http.StatusInternalServerError {
		t.Fatalf("Status() = %d", got)
	}
}
