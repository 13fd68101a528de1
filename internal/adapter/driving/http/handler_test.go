package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/onboarding/internal/adapter/driving/http"
	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockConfigStore struct {
	mu      sync.Mutex
	cfg     model.Configuration
	saveErr error
}

func (m *mockConfigStore) Load(_ context.Context) (model.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Clone(), nil
}

func (m *mockConfigStore) Save(_ context.Context, cfg model.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cfg = cfg.Clone()
	return nil
}

type mockCredentialStore struct {
	creds   map[string]model.Credential
	listErr error
	nextID  int
}

func (m *mockCredentialStore) Create(_ context.Context, cred model.Credential) (model.Credential, error) {
	if m.creds == nil {
		m.creds = map[string]model.Credential{}
	}
	if cred.ID == "" {
		m.nextID++
		cred.ID = "cred-" + strings.Repeat("x", m.nextID)
	}
	m.creds[cred.ID] = cred
	return cred, nil
}

func (m *mockCredentialStore) Resolve(_ context.Context, id string) (model.Credential, error) {
	cred, ok := m.creds[id]
	if !ok {
		return model.Credential{}, driven.ErrCredentialNotFound
	}
	return cred, nil
}

func (m *mockCredentialStore) List(_ context.Context) ([]model.Credential, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, id string) error {
	if _, ok := m.creds[id]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(m.creds, id)
	return nil
}

type mockCallbackClient struct {
	status   int
	err      error
	requests []driven.CallbackRequest
}

func (m *mockCallbackClient) Post(_ context.Context, req driven.CallbackRequest) (int, error) {
	m.requests = append(m.requests, req)
	return m.status, m.err
}

// --- Test fixtures ---

type fixture struct {
	store   *mockConfigStore
	creds   *mockCredentialStore
	client  *mockCallbackClient
	svc     *application.ConfigurationService
	handler http.Handler
}

func setup(t *testing.T, initial model.Configuration, adminToken string) *fixture {
	t.Helper()

	f := &fixture{
		store:  &mockConfigStore{cfg: initial},
		creds:  &mockCredentialStore{},
		client: &mockCallbackClient{status: http.StatusOK},
	}
	logger := slog.Default()
	f.svc = application.NewConfigurationService(f.store, application.NewRegistry(application.PreserveIDs), nil, logger)
	require.NoError(t, f.svc.Init(context.Background()))

	dispatcher := application.NewDispatcher(f.client, f.creds, f.svc, nil, logger)
	h := httphandler.NewHandler(f.svc, dispatcher, f.creds, adminToken, logger)
	f.handler = httphandler.NewServeMux(h, logger)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field"`
}

// --- Tests ---

func TestHealth(t *testing.T) {
	f := setup(t, model.Configuration{}, "")

	rec := f.do(t, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
}

func TestGetConfiguration_OmitsPassword(t *testing.T) {
	f := setup(t, model.Configuration{
		Name:     "Onboarding",
		URL:      "https://hooks.example.com",
		Username: "deploybot",
		Password: model.NewSecret("hunter"),
		Entries:  []model.Entry{{ID: "e1", Name: "Backend"}},
	}, "")

	rec := f.do(t, http.MethodGet, "/api/v1/configuration", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter")
	var resp httphandler.ConfigurationResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Onboarding", resp.Name)
	assert.True(t, resp.PasswordSet)
	assert.Equal(t, []httphandler.EntryResponse{{ID: "e1", Name: "Backend"}}, resp.Entries)
}

func TestPutConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "valid form",
			body:       `{"name":"Platform Team","url":"https://hooks","username":"deploybot","password":"pw","entries":[{"name":"Backend"}]}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid name",
			body:       `{"name":"Team 42","username":"deploybot"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "name",
		},
		{
			name:       "invalid username",
			body:       `{"name":"Team","username":"ci-bot"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "username",
		},
		{
			name:       "empty entry name",
			body:       `{"name":"Team","entries":[{"name":""}]}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "entries[0].name",
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"nmae":"Team"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, model.Configuration{Name: "Original"}, "")

			rec := f.do(t, http.MethodPut, "/api/v1/configuration", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				var resp httphandler.ConfigurationResponse
				decodeJSON(t, rec, &resp)
				assert.Equal(t, "Platform Team", resp.Name)
				assert.True(t, resp.PasswordSet)
				require.Len(t, resp.Entries, 1)
				assert.NotEmpty(t, resp.Entries[0].ID)
				return
			}

			assert.Equal(t, "Original", f.svc.Snapshot().Name, "rejected form changes nothing")
			if tt.wantField != "" {
				var resp errorBody
				decodeJSON(t, rec, &resp)
				assert.Equal(t, application.ConfigErrBindFailed, resp.Kind)
				assert.Equal(t, tt.wantField, resp.Field)
			}
		})
	}
}

func TestPutConfiguration_StoreFailure(t *testing.T) {
	f := setup(t, model.Configuration{}, "")
	f.store.saveErr = errors.New("disk full")

	rec := f.do(t, http.MethodPut, "/api/v1/configuration", `{"name":"Team"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestEntriesLifecycle(t *testing.T) {
	f := setup(t, model.Configuration{}, "")

	rec := f.do(t, http.MethodPost, "/api/v1/entries", `{"name":"Alpha"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var alpha httphandler.EntryResponse
	decodeJSON(t, rec, &alpha)

	rec = f.do(t, http.MethodPost, "/api/v1/entries", `{"name":"Beta"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/entries/"+alpha.ID, `{"name":"Gamma"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var renamed httphandler.EntryResponse
	decodeJSON(t, rec, &renamed)
	assert.Equal(t, alpha.ID, renamed.ID)
	assert.Equal(t, "Gamma", renamed.Name)

	rec = f.do(t, http.MethodGet, "/api/v1/categories", "")
	var cats httphandler.CategoriesResponse
	decodeJSON(t, rec, &cats)
	assert.Equal(t, []string{"Gamma", "Beta"}, cats.Categories)

	rec = f.do(t, http.MethodDelete, "/api/v1/entries/"+alpha.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/entries/"+alpha.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/entries", "")
	var entries []httphandler.EntryResponse
	decodeJSON(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "Beta", entries[0].Name)
}

func TestAddEntry_Invalid(t *testing.T) {
	f := setup(t, model.Configuration{}, "")

	rec := f.do(t, http.MethodPost, "/api/v1/entries", `{"name":"Team 7"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorBody
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Invalid name format", resp.Error)
	assert.Equal(t, "invalid-format", resp.Kind)
}

func TestReplaceEntries(t *testing.T) {
	f := setup(t, model.Configuration{Entries: []model.Entry{{ID: "keep", Name: "A"}}}, "")

	rec := f.do(t, http.MethodPut, "/api/v1/entries", `{"entries":[{"id":"keep","name":"Renamed"},{"name":"New"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []httphandler.EntryResponse
	decodeJSON(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, httphandler.EntryResponse{ID: "keep", Name: "Renamed"}, entries[0])

	rec = f.do(t, http.MethodPut, "/api/v1/entries", `{"entries":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &entries)
	assert.Len(t, entries, 2, "null entries changes nothing")

	rec = f.do(t, http.MethodPut, "/api/v1/entries", `{"entries":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &entries)
	assert.Empty(t, entries)
}

func TestRunStep(t *testing.T) {
	f := setup(t, model.Configuration{Entries: []model.Entry{{ID: "1", Name: "Backend"}}}, "")

	rec := f.do(t, http.MethodPost, "/api/v1/steps", `{"category":"Backend"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.StepResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Executing onboarding step with category: Backend", resp.Message)

	rec = f.do(t, http.MethodPost, "/api/v1/steps", `{"category":"Nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		field       string
		value       string
		wantStatus  int
		wantValid   bool
		wantMessage string
	}{
		{field: "name", value: "Jane Doe", wantStatus: http.StatusOK, wantValid: true},
		{field: "name", value: "", wantStatus: http.StatusOK, wantMessage: "Please enter your name"},
		{field: "name", value: "R2D2", wantStatus: http.StatusOK, wantMessage: "Invalid name format"},
		{field: "username", value: "jdoe", wantStatus: http.StatusOK, wantValid: true},
		{field: "username", value: "", wantStatus: http.StatusOK, wantMessage: "Please enter your Username"},
		{field: "username", value: "j doe", wantStatus: http.StatusOK, wantMessage: "Invalid Username format"},
		{field: "email", value: "x", wantStatus: http.StatusNotFound},
	}

	f := setup(t, model.Configuration{}, "")
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.value, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"value": tt.value})

			rec := f.do(t, http.MethodPost, "/api/v1/validate/"+tt.field, string(body))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp httphandler.ValidationResponse
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantValid, resp.Valid)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		clientErr  error
		wantStatus int
		wantKind   string
		wantError  string
	}{
		{
			name:       "endpoint answers 200",
			body:       `{"url":"https://hooks","username":"u","password":"p"}`,
			status:     http.StatusOK,
			wantStatus: http.StatusOK,
		},
		{
			name:       "endpoint answers 403",
			body:       `{"url":"https://hooks","username":"u","password":"p"}`,
			status:     http.StatusForbidden,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "http-status",
			wantError:  "Server error : 403",
		},
		{
			name:       "missing password",
			body:       `{"url":"https://hooks","username":"u"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "missing-field",
		},
		{
			name:       "transport failure",
			body:       `{"url":"https://hooks","username":"u","password":"p"}`,
			clientErr:  errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "transport-failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, model.Configuration{}, "")
			f.client.status = tt.status
			f.client.err = tt.clientErr

			rec := f.do(t, http.MethodPost, "/api/v1/connection/test", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp httphandler.CallbackResponse
				decodeJSON(t, rec, &resp)
				assert.True(t, resp.OK)
				assert.Equal(t, "Input Validated", resp.Message)
				return
			}
			var resp errorBody
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	f := setup(t, model.Configuration{
		URL:      "https://hooks",
		Username: "deploybot",
		Password: model.NewSecret("pw"),
	}, "")

	rec := f.do(t, http.MethodPost, "/api/v1/credentials", `{"description":"deploy","secret":"tok"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "tok\"")
	var created httphandler.CredentialResponse
	decodeJSON(t, rec, &created)
	assert.Equal(t, "string", created.Kind)

	rec = f.do(t, http.MethodGet, "/api/v1/credentials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []httphandler.CredentialResponse
	decodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = f.do(t, http.MethodPost, "/api/v1/credentials/"+created.ID+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.client.requests, 1)
	assert.Equal(t, "tok", f.client.requests[0].Body)

	rec = f.do(t, http.MethodPost, "/api/v1/credentials/missing/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errResp errorBody
	decodeJSON(t, rec, &errResp)
	assert.Equal(t, "credential-not-found", errResp.Kind)
	assert.Equal(t, "No credential found with id: missing", errResp.Error)

	rec = f.do(t, http.MethodDelete, "/api/v1/credentials/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/credentials/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCredential_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown kind", body: `{"kind":"certificate","secret":"x"}`},
		{name: "missing secret", body: `{"kind":"string"}`},
		{name: "username_password without username", body: `{"kind":"username_password","secret":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, model.Configuration{}, "")
			rec := f.do(t, http.MethodPost, "/api/v1/credentials", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListCredentials_KeyNotSet(t *testing.T) {
	f := setup(t, model.Configuration{}, "")
	f.creds.listErr = driven.ErrEncryptionKeyNotSet

	rec := f.do(t, http.MethodGet, "/api/v1/credentials", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ONBOARDING_SECRET_KEY")
}

func TestAdminToken(t *testing.T) {
	f := setup(t, model.Configuration{}, "s3cret")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		auth       string
		wantStatus int
	}{
		{name: "reads are open", method: http.MethodGet, path: "/api/v1/configuration", wantStatus: http.StatusOK},
		{name: "mutation without token", method: http.MethodPost, path: "/api/v1/entries", body: `{"name":"A"}`, wantStatus: http.StatusUnauthorized},
		{name: "mutation with wrong token", method: http.MethodPost, path: "/api/v1/entries", body: `{"name":"A"}`, auth: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "mutation with token", method: http.MethodPost, path: "/api/v1/entries", body: `{"name":"A"}`, auth: "Bearer s3cret", wantStatus: http.StatusCreated},
		{name: "credential listing is guarded", method: http.MethodGet, path: "/api/v1/credentials", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.auth != "" {
				rec = f.do(t, tt.method, tt.path, tt.body, "Authorization", tt.auth)
			} else {
				rec = f.do(t, tt.method, tt.path, tt.body)
			}
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	// A nil ConfigurationService makes the handler panic; recovery turns it into a 500.
	h := httphandler.NewHandler(nil, nil, nil, "", slog.Default())
	mux := httphandler.NewServeMux(h, slog.Default())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
