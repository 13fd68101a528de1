// Package web implements the HTML settings page using templ components.
package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/onboarding/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/onboarding/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/onboarding/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

const maxFormBytes = 1 << 20

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	configSvc  *application.ConfigurationService
	dispatcher *application.Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	configSvc *application.ConfigurationService,
	dispatcher *application.Dispatcher,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		configSvc:  configSvc,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Settings renders the configuration form.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	m := toSettingsViewModel(h.configSvc.Snapshot())
	m.CSRFToken = csrfToken(w, r)
	h.render(w, r, http.StatusOK, m)
}

// SaveSettings applies the submitted form. A rejected form is re-rendered
// with the submitted values and the field error; nothing is saved.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form, ok := parseConfigurationForm(r)
	if !ok {
		http.Error(w, "entry_id and entry_name must be submitted in pairs", http.StatusBadRequest)
		return
	}

	cfg, err := h.configSvc.Configure(r.Context(), form)
	if err != nil {
		h.logger.Warn("settings rejected", "error", err)
		m := withSubmittedForm(toSettingsViewModel(h.configSvc.Snapshot()), form)
		m.CSRFToken = csrfToken(w, r)
		m.Flash, m.FieldErrors = flashFor(err)
		h.render(w, r, http.StatusUnprocessableEntity, m)
		return
	}

	m := toSettingsViewModel(cfg)
	m.CSRFToken = csrfToken(w, r)
	m.Flash = &vm.Flash{Kind: vm.FlashSuccess, Message: "Configuration saved"}
	h.render(w, r, http.StatusOK, m)
}

// TestConnection checks the endpoint typed into the form without saving it.
// An empty password field falls back to the stored password.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form, ok := parseConfigurationForm(r)
	if !ok {
		http.Error(w, "entry_id and entry_name must be submitted in pairs", http.StatusBadRequest)
		return
	}

	current := h.configSvc.Snapshot()
	password := current.Password.Reveal()
	if form.Password != nil {
		password = *form.Password
	}

	m := withSubmittedForm(toSettingsViewModel(current), form)
	m.CSRFToken = csrfToken(w, r)

	status := http.StatusOK
	if err := h.dispatcher.TestConnection(r.Context(), form.URL, form.Username, password); err != nil {
		m.Flash, _ = flashFor(err)
		status = http.StatusUnprocessableEntity
	} else {
		m.Flash = &vm.Flash{Kind: vm.FlashSuccess, Message: "Input Validated"}
	}
	h.render(w, r, status, m)
}

// parseForm enforces the body limit and CSRF check. On failure it writes the
// response and returns false.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return false
	}
	return true
}

// parseConfigurationForm reads the settings form. Blank new entry rows are
// dropped; rows that carry an id are kept even when blank so validation
// reports them. ok is false when entry ids and names are not paired.
func parseConfigurationForm(r *http.Request) (model.ConfigurationForm, bool) {
	form := model.ConfigurationForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		URL:         r.PostFormValue("url"),
		Username:    r.PostFormValue("username"),
	}
	if pw := r.PostFormValue("password"); pw != "" {
		form.Password = &pw
	}

	if r.PostFormValue("entries_present") == "" {
		return form, true
	}

	ids := r.PostForm["entry_id"]
	names := r.PostForm["entry_name"]
	if len(ids) != len(names) {
		return model.ConfigurationForm{}, false
	}

	form.Entries = make([]model.EntryCandidate, 0, len(names))
	for i, name := range names {
		id := strings.TrimSpace(ids[i])
		if id == "" && strings.TrimSpace(name) == "" {
			continue
		}
		form.Entries = append(form.Entries, model.EntryCandidate{ID: id, Name: name})
	}
	return form, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, m vm.SettingsViewModel) {
	layout := templates.Layout("Onboarding", pages.Settings(m))
	templ.Handler(layout, templ.WithStatus(status), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		h.logger.Error("failed to render settings page", "error", err)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "internal server error", http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}
