package server

import (
	"encoding/json"
	"net/http"

	"portfolio/internal/services"
	"portfolio/internal/types"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Count      *int                 `json:"count,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
	Related    any                  `json:"related,omitempty"`
	Error      *errorBody           `json:"error,omitempty"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func okMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func created(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// toAPIError maps any error to what the client is allowed to see.
func toAPIError(err error) *types.APIError {
	var apiErr *types.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.NotFound("Record")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.Conflict("A record with this value already exists")
	}
	return types.Internal(err)
}

// fail writes the error envelope. Internal errors are logged with the request
// id and only described to the client in development.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	body := &errorBody{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	if apiErr.Status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if s.cfg.IsDev() && apiErr.Err != nil {
			body.Message = apiErr.Err.Error()
		}
	}
	writeJSON(w, apiErr.Status, envelope{Success: false, Error: body})
}
