package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names from the books schema mapped to JSON field names.
var constraintField = map[string]string{
	"books_pkey":                "id",
	"books_open_library_id_key": "openLibraryId",
	"books_title_not_blank":     "title",
	"books_year_range":          "year",
}

// columnField maps snake_case columns that appear in PG error detail.
var columnField = map[string]string{
	"open_library_id": "openLibraryId",
	"cover_url":       "coverUrl",
	"book_url":        "bookUrl",
	"title":           "title",
	"year":            "year",
	"id":              "id",
}

func fieldFromDetail(detail string) string {
	for _, col := range []string{"open_library_id", "cover_url", "book_url", "title", "year", "id"} {
		if strings.Contains(detail, col) {
			return columnField[col]
		}
	}
	return ""
}

// FromPG maps a pgconn.PgError anywhere in err's chain to a Problem.
func FromPG(err error) (Problem, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return Problem{}, false
	}

	p := Problem{Title: "Database error", Status: http.StatusInternalServerError}

	field := constraintField[pg.ConstraintName]
	if field == "" && pg.ColumnName != "" {
		field = columnField[pg.ColumnName]
	}
	if field == "" && pg.Detail != "" {
		field = fieldFromDetail(pg.Detail)
	}
	fe := func(def, code, msg string) []FieldError {
		if field == "" {
			field = def
		}
		return []FieldError{{Field: field, Code: code, Message: msg}}
	}

	switch pg.Code {
	case "23505": // unique_violation
		p.Status, p.Title = http.StatusConflict, "Conflict"
		p.FieldErrors = fe("resource", "unique", "value already exists")
	case "23502": // not_null_violation
		p.Status, p.Title = http.StatusBadRequest, "Bad Request"
		p.FieldErrors = fe("field", "not_null", "required field is missing")
	case "23514": // check_violation
		p.Status, p.Title = http.StatusUnprocessableEntity, "Unprocessable Entity"
		p.FieldErrors = fe("field", "check", "constraint failed")
	case "22P02": // invalid_text_representation, e.g. a malformed uuid
		p.Status, p.Title = http.StatusBadRequest, "Bad Request"
		p.FieldErrors = fe("id", "invalid", "invalid format")
	case "22001": // string_data_right_truncation
		p.Status, p.Title = http.StatusBadRequest, "Bad Request"
		p.FieldErrors = fe("field", "too_long", "value is too long")
	case "40001", "40P01": // serialization_failure, deadlock_detected
		p.Status, p.Title = http.StatusConflict, "Conflict"
		p.Detail = "transaction conflict, please retry"
		p.Retryable = true
	}
	return p, true
}
