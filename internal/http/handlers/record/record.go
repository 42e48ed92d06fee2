// Package record contains all HTTP handlers for the Record resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────────────────
// The router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a store. Each
// factory below accepts the store once, at route registration, and returns
// a function with the exact signature the router needs:
//
//	rt.HandleFunc(http.MethodPost, "/records", record.New(store))
//
// Handlers keep no state of their own; everything lives in the store.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/utils/response"
)

// maxBodyBytes caps request bodies; records are tiny.
const maxBodyBytes = 1 << 20

// createRequest is the body of POST /records. Age is a pointer so a
// missing field can be told apart from an explicit 0.
type createRequest struct {
	Name string `json:"name" validate:"required"`
	Age  *int   `json:"age"  validate:"required,gte=0"`
}

// updateRequest is the body of PATCH /records/{id}. Only age is mutable.
// The age range is left to the store, which reports a missing record
// before a bad age.
type updateRequest struct {
	Age *int `json:"age" validate:"required"`
}

// validate is shared by every handler. A *validator.Validate is safe for
// concurrent use and caches struct metadata after the first call.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name ("age") instead of the Go name ("Age").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /records
//
// Request body:  { "name": "Alice", "age": 29 }
// 201 Created:   { "id": 1, "name": "Alice", "age": 29 }
// 400:           empty or malformed body, unknown field, failed validation
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a record")

		var req createRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		rec, err := store.Create(r.Context(), req.Name, *req.Age)
		if err != nil {
			writeStoreError(w, err, "error creating record")
			return
		}

		slog.Info("record created", slog.Int64("id", rec.ID))
		_ = response.WriteJSON(w, http.StatusCreated, rec)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /records/{id}
//
// 200 OK: the record. 400 if {id} is not a positive integer, 404 if absent.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a record", slog.Int64("id", id))

		rec, err := store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, "error getting record")
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, rec)
	}
}

// GetList handles GET /records. The array is ordered by id and is [] (not
// null) when the store is empty.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all records")

		records, err := store.List(r.Context())
		if err != nil {
			writeStoreError(w, err, "error listing records")
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /records/{id}
//
// Request body:  { "age": 30 }
// 200 OK:        the updated record
// 400:           bad id, bad body, negative age
// 404:           no record with that id
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a record", slog.Int64("id", id))

		var req updateRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		rec, err := store.Update(r.Context(), id, *req.Age)
		if err != nil {
			writeStoreError(w, err, "error updating record")
			return
		}

		slog.Info("record updated", slog.Int64("id", id), slog.Int("age", rec.Age))
		_ = response.WriteJSON(w, http.StatusOK, rec)
	}
}

// Delete handles DELETE /records/{id}: 204 on success, 404 if absent
// (including a repeated delete of the same id).
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a record", slog.Int64("id", id))

		if err := store.Delete(r.Context(), id); err != nil {
			writeStoreError(w, err, "error deleting record")
			return
		}

		slog.Info("record deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}

// parseID reads the {id} path segment. On failure it has already written
// a 400 and returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(fmt.Errorf("invalid id %q: must be a positive integer", raw)))
		return 0, false
	}
	return id, true
}

// decodeAndValidate fills dst from the JSON body and runs the validate
// tags on it. On failure it has already written a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		_ = response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		_ = response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	if dec.More() {
		_ = response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body must hold a single JSON object")))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			_ = response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return false
		}
		_ = response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// writeStoreError maps store errors onto status codes:
// ErrValidation → 400, ErrNotFound → 404, anything else → 500.
func writeStoreError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	default:
		slog.Error(msg, slog.String("error", err.Error()))
	}
	_ = response.WriteJSON(w, status, response.GeneralError(err))
}
