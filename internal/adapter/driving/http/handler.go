// Package httphandler implements the REST API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	configSvc   *application.ConfigurationService
	dispatcher  *application.Dispatcher
	credentials driven.CredentialStore
	adminToken  string
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. An empty
// adminToken leaves mutating routes unauthenticated.
func NewHandler(
	configSvc *application.ConfigurationService,
	dispatcher *application.Dispatcher,
	credentials driven.CredentialStore,
	adminToken string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		configSvc:   configSvc,
		dispatcher:  dispatcher,
		credentials: credentials,
		adminToken:  adminToken,
		logger:      logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return requireAdmin(h.adminToken, fn)
	}

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/configuration", h.GetConfiguration)
	mux.Handle("PUT /api/v1/configuration", admin(h.PutConfiguration))

	mux.HandleFunc("GET /api/v1/entries", h.ListEntries)
	mux.Handle("PUT /api/v1/entries", admin(h.ReplaceEntries))
	mux.Handle("POST /api/v1/entries", admin(h.AddEntry))
	mux.Handle("PATCH /api/v1/entries/{id}", admin(h.RenameEntry))
	mux.Handle("DELETE /api/v1/entries/{id}", admin(h.RemoveEntry))

	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.Handle("POST /api/v1/steps", admin(h.RunStep))

	mux.HandleFunc("POST /api/v1/validate/{field}", h.ValidateField)
	mux.Handle("POST /api/v1/connection/test", admin(h.TestConnection))

	mux.Handle("GET /api/v1/credentials", admin(h.ListCredentials))
	mux.Handle("POST /api/v1/credentials", admin(h.CreateCredential))
	mux.Handle("DELETE /api/v1/credentials/{id}", admin(h.DeleteCredential))
	mux.Handle("POST /api/v1/credentials/{id}/submit", admin(h.SubmitCredential))
}

// ApplyMiddleware wraps next with panic recovery and request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetConfiguration returns the current configuration. The password is never
// returned; password_set reports whether one is stored.
func (h *Handler) GetConfiguration(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toConfigurationResponse(h.configSvc.Snapshot()))
}

// PutConfiguration applies a whole-form configuration update. Omitting
// password keeps the stored one; omitting entries keeps the stored list.
func (h *Handler) PutConfiguration(w http.ResponseWriter, r *http.Request) {
	var req ConfigurationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form := model.ConfigurationForm{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Username:    req.Username,
		Password:    req.Password,
		Entries:     toCandidates(req.Entries),
	}

	cfg, err := h.configSvc.Configure(r.Context(), form)
	if err != nil {
		h.writeServiceError(w, err, "failed to save configuration")
		return
	}

	writeJSON(w, http.StatusOK, toConfigurationResponse(cfg))
}

// decodeBody decodes a JSON request body into v. On failure it writes a 400
// response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps application and domain errors to HTTP responses.
// Anything unrecognized is logged with msg and reported as a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	var (
		cbErr  *application.CallbackError
		cfgErr *application.ConfigurationError
		valErr *model.ValidationError
	)

	switch {
	case errors.As(err, &cbErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: cbErr.Message,
			Kind:  string(cbErr.Kind),
		})
	case errors.As(err, &cfgErr):
		message := cfgErr.Err.Error()
		if errors.As(cfgErr.Err, &valErr) {
			message = valErr.Message
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: message,
			Kind:  cfgErr.Kind,
			Field: cfgErr.Field,
		})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: valErr.Message,
			Kind:  valErr.Kind.Error(),
			Field: valErr.Field,
		})
	case errors.Is(err, application.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, application.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "unknown category")
	case errors.Is(err, driven.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, "credential not found")
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
