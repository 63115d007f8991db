package handle

import (
	"encoding/json"
	"net/http"

	"dineflow/internal/xpkg/errs"
)

// jsonResponse writes data as a JSON-encoded response with the given status.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// jsonError maps the error taxonomy onto a structured {error, message} body.
func jsonError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errs.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errs.Code(err),
		"message": err.Error(),
	})
}
