package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

func TestObserveValidation(t *testing.T) {
	m := New()
	m.ObserveValidation(&validation.Exception{Errors: []*validation.FieldError{
		validation.RequiredField("email"),
		validation.RequiredField("username"),
		validation.RepeatedEmail(),
	}})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("required")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("repeated_email")))
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /items/{id}", "GET", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}
