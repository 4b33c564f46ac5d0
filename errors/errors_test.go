package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid input", InvalidInput("op", nil, "bad url"), KindInvalidInput},
		{"not found", NotFound("op", nil, "missing"), KindNotFound},
		{"upstream", UpstreamUnavailable("op", nil, "captions disabled"), KindUpstreamUnavailable},
		{"transport", TransportFailure("op", stderrors.New("timeout"), "fetch failed"), KindTransportFailure},
		{"configuration", Configuration("op", nil, "missing key"), KindConfiguration},
		{"foreign error", stderrors.New("plain"), KindInternal},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("op", nil, "missing")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppErrorError(t *testing.T) {
	err := TransportFailure("op", stderrors.New("connection refused"), "fetch failed")
	want := "fetch failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := InvalidInput("op", nil, "URL is required")
	if bare.Error() != "URL is required" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "URL is required")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Internal("op", cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause through Unwrap")
	}
}

func TestStatusCodes(t *testing.T) {
	if got := InvalidInput("op", nil, "").Code; got != http.StatusBadRequest {
		t.Errorf("InvalidInput code = %d, want %d", got, http.StatusBadRequest)
	}
	if got := UpstreamUnavailable("op", nil, "").Code; got != http.StatusBadGateway {
		t.Errorf("UpstreamUnavailable code = %d, want %d", got, http.StatusBadGateway)
	}
	if got := NotFound("op", nil, "").Code; got != http.StatusNotFound {
		t.Errorf("NotFound code = %d, want %d", got, http.StatusNotFound)
	}
}
