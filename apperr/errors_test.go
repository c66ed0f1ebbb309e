package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("dup"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"missing membership", MissingMembership("Recipe"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBody(t *testing.T) {
	if got := MissingMembership("Recipe").Body(); !reflect.DeepEqual(got, map[string]string{"error": "Recipe not found"}) {
		t.Errorf("unexpected body %v", got)
	}
	if got := Field("avatar", "avatar field is empty").Body(); !reflect.DeepEqual(got, map[string]string{"avatar": "avatar field is empty"}) {
		t.Errorf("unexpected body %v", got)
	}
	if got := Internal(errors.New("secret")).Body(); !reflect.DeepEqual(got, map[string]string{"error": "internal server error"}) {
		t.Errorf("internal error leaked detail: %v", got)
	}
	fields := map[string][]string{"name": {"name is required"}}
	if got := ValidationFields(fields).Body(); !reflect.DeepEqual(got, fields) {
		t.Errorf("unexpected body %v", got)
	}
}

func TestFromUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("subscribe: %w", Validation("cannot subscribe to yourself"))
	if !Is(wrapped, KindValidation) {
		t.Fatal("expected validation kind through wrapping")
	}
	if From(errors.New("plain")).Kind != KindInternal {
		t.Fatal("plain errors must classify as internal")
	}
}
