package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{
		ErrorMessage: message,
		Title:        http.StatusText(status),
	})
}

func writeDomainError(w http.ResponseWriter, derr *domainerr.Error) {
	writeJSON(w, derr.StatusCode, api.ErrorResponse{
		ErrorMessage: derr.Message,
		Errors:       derr.Details,
		Title:        derr.Name,
	})
}

// writeStorageError maps a persistence error through the domain mapper,
// falling back to a 500 for anything the mapper does not recognize.
func writeStorageError(w http.ResponseWriter, logger *slog.Logger, mapper *domainerr.Mapper, err error, opts domainerr.MapOptions) {
	if derr := mapper.Map(err, opts); derr != nil {
		writeDomainError(w, derr)
		return
	}
	logger.Error("unexpected storage error", slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
