package httphandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// ValidateField checks a single form value the way the settings page does
// while the administrator types. Only "name" and "username" are known fields.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	var check func(string) error
	switch r.PathValue("field") {
	case "name":
		check = model.CheckName
	case "username":
		check = model.CheckUsername
	default:
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}

	var req ValidateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp := ValidationResponse{Valid: true}
	if err := check(req.Value); err != nil {
		var valErr *model.ValidationError
		if !errors.As(err, &valErr) {
			h.writeServiceError(w, err, "failed to validate field")
			return
		}
		resp = ValidationResponse{Valid: false, Kind: valErr.Kind.Error(), Message: valErr.Message}
	}

	writeJSON(w, http.StatusOK, resp)
}

// TestConnection posts an empty authenticated request to the given endpoint.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionTestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.dispatcher.TestConnection(r.Context(), req.URL, req.Username, req.Password); err != nil {
		h.writeServiceError(w, err, "failed to test connection")
		return
	}

	writeJSON(w, http.StatusOK, CallbackResponse{OK: true, Message: "Input Validated"})
}

// ListCredentials returns stored credentials without their secrets.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.credentials.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list credentials")
		return
	}

	resp := make([]CredentialResponse, 0, len(creds))
	for _, c := range creds {
		resp = append(resp, toCredentialResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateCredential stores a new credential and returns it without the secret.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req CreateCredentialRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind := model.CredentialKind(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = model.CredentialKindString
	}
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be \"string\" or \"username_password\"")
		return
	}
	if req.Secret == "" {
		writeError(w, http.StatusBadRequest, "secret is required")
		return
	}
	if kind == model.CredentialKindUsernamePassword && strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required for username_password credentials")
		return
	}

	created, err := h.credentials.Create(r.Context(), model.Credential{
		ID:          strings.TrimSpace(req.ID),
		Kind:        kind,
		Description: req.Description,
		Username:    req.Username,
		Secret:      model.NewSecret(req.Secret),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			writeError(w, http.StatusConflict, "credential id already exists")
			return
		}
		h.writeServiceError(w, err, "failed to create credential")
		return
	}

	writeJSON(w, http.StatusCreated, toCredentialResponse(created))
}

// DeleteCredential removes a stored credential.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "failed to delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitCredential forwards a stored credential's secret to the configured
// endpoint.
func (h *Handler) SubmitCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.dispatcher.SubmitStoredCredential(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "failed to submit credential")
		return
	}

	writeJSON(w, http.StatusOK, CallbackResponse{OK: true, Message: "Credential submitted"})
}
