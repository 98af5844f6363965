package apperr

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"go.uber.org/zap"
)

// FromStore maps catalogue errors. Postgres details win over the sentinel
// so clients see which field conflicted.
func FromStore(err error) Problem {
	if p, ok := FromPG(err); ok && p.Status != http.StatusInternalServerError {
		return p
	}
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return Problem{Status: http.StatusNotFound, Title: "Not Found", Detail: "book not found"}
	case errors.Is(err, catalog.ErrConflict):
		return Problem{Status: http.StatusConflict, Title: "Conflict"}
	case errors.Is(err, catalog.ErrInvalid):
		return Problem{Status: http.StatusBadRequest, Title: "Bad Request"}
	}
	return Problem{Status: http.StatusInternalServerError, Title: "Internal Server Error"}
}

// HandleStoreError writes err as a Problem and logs 5xx. Returns true if err
// was non-nil.
func HandleStoreError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) bool {
	if err == nil {
		return false
	}
	p := FromStore(err)
	if p.Status >= 500 && log != nil {
		log.Error("store error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	Write(w, r, p)
	return true
}

// FromValidation turns validator failures into a 422 with per-field errors.
func FromValidation(err error) Problem {
	p := Problem{Status: http.StatusUnprocessableEntity, Title: "Unprocessable Entity"}
	for _, is := range validate.Issues(err) {
		p.FieldErrors = append(p.FieldErrors, FieldError{Field: is.Field, Code: is.Tag, Message: is.Message})
	}
	return p
}
