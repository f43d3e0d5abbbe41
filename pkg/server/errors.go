package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/service"
)

// Error types returned in the error envelope.
const (
	errorTypeInvalidRequest  = "invalid_request_error"
	errorTypeNotFound        = "not_found"
	errorTypeConfiguration   = "configuration_error"
	errorTypeHistoryDisabled = "history_disabled"
	errorTypeServer          = "server_error"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message, param string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Message: message, Type: errType, Param: param}})
}

// writeServiceError maps calculation errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation *calcerr.ValidationError
		notFound   *calcerr.ModelNotFoundError
		configErr  *calcerr.ConfigurationError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, err.Error(), validation.Field)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, errorTypeNotFound, err.Error(), "model")
	case errors.As(err, &configErr):
		writeError(w, http.StatusInternalServerError, errorTypeConfiguration, err.Error(), configErr.Field)
	case errors.Is(err, service.ErrHistoryDisabled):
		writeError(w, http.StatusNotImplemented, errorTypeHistoryDisabled, err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, errorTypeServer, "An internal error occurred.", "")
	}
}
