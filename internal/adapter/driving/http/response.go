package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Kind and Field are set
// for validation and callback failures.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// EntryResponse is the JSON representation of an entry.
type EntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConfigurationResponse is the JSON representation of the configuration.
type ConfigurationResponse struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	Username    string          `json:"username"`
	PasswordSet bool            `json:"password_set"`
	Entries     []EntryResponse `json:"entries"`
}

// CategoriesResponse lists the selectable step categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// StepResponse is the outcome of running an onboarding step.
type StepResponse struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ValidationResponse reports the result of a single-field check.
type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// CallbackResponse reports a successful callback.
type CallbackResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// CredentialResponse is the JSON representation of a stored credential. The
// secret is never included.
type CredentialResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// EntryRequest is one row of a submitted entry list. ID is empty for new rows.
type EntryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConfigurationRequest is the JSON body for PUT /api/v1/configuration.
type ConfigurationRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Username    string         `json:"username"`
	Password    *string        `json:"password,omitempty"`
	Entries     []EntryRequest `json:"entries"`
}

// ReplaceEntriesRequest is the JSON body for PUT /api/v1/entries.
type ReplaceEntriesRequest struct {
	Entries []EntryRequest `json:"entries"`
}

// EntryNameRequest is the JSON body for adding or renaming an entry.
type EntryNameRequest struct {
	Name string `json:"name"`
}

// StepRequest is the JSON body for POST /api/v1/steps.
type StepRequest struct {
	Category string `json:"category"`
}

// ValidateRequest is the JSON body for POST /api/v1/validate/{field}.
type ValidateRequest struct {
	Value string `json:"value"`
}

// ConnectionTestRequest is the JSON body for POST /api/v1/connection/test.
type ConnectionTestRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateCredentialRequest is the JSON body for POST /api/v1/credentials.
// Kind defaults to "string".
type CreateCredentialRequest struct {
	ID          string `json:"id,omitempty"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	Secret      string `json:"secret"`
}

func toEntryResponse(e model.Entry) EntryResponse {
	return EntryResponse{ID: e.ID, Name: e.Name}
}

func toEntryResponses(entries []model.Entry) []EntryResponse {
	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	return resp
}

func toConfigurationResponse(cfg model.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		Name:        cfg.Name,
		Description: cfg.Description,
		URL:         cfg.URL,
		Username:    cfg.Username,
		PasswordSet: !cfg.Password.IsEmpty(),
		Entries:     toEntryResponses(cfg.Entries),
	}
}

func toCredentialResponse(c model.Credential) CredentialResponse {
	return CredentialResponse{
		ID:          c.ID,
		Kind:        string(c.Kind),
		Description: c.Description,
		Username:    c.Username,
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toCandidates keeps the nil/empty distinction: nil means "leave unchanged".
func toCandidates(rows []EntryRequest) []model.EntryCandidate {
	if rows == nil {
		return nil
	}
	out := make([]model.EntryCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.EntryCandidate{ID: r.ID, Name: r.Name})
	}
	return out
}
