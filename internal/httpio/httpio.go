// Package httpio renders service results as JSON HTTP responses.
package httpio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

// ValidationObserver is told about every rejected batch.
type ValidationObserver interface {
	ObserveValidation(ex *validation.Exception)
}

type Responder struct {
	Logger   *zap.SugaredLogger
	Observer ValidationObserver
}

func (rs Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"error": msg}.
func (rs Responder) Message(w http.ResponseWriter, status int, msg string) {
	rs.JSON(w, status, map[string]string{"error": msg})
}

// Error maps err to a status: validation failures become 422 with the
// field errors, missing entities 404 and everything else 500.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if ex, ok := validation.AsException(err); ok {
		if rs.Observer != nil {
			rs.Observer.ObserveValidation(ex)
		}
		rs.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": ex.Errors})
		return
	}
	if errors.Is(err, entity.ErrNotFound) {
		rs.Message(w, http.StatusNotFound, "not found")
		return
	}
	rs.Logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	rs.Message(w, http.StatusInternalServerError, "internal error")
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// PathID parses the {id} wildcard of the matched route.
func PathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// Populate reads the populate query parameter.
func Populate(r *http.Request) entity.Populate {
	return entity.ParsePopulate(r.URL.Query().Get("populate"))
}
