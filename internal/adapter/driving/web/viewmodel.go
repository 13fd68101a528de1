package web

import (
	"errors"

	vm "github.com/ericfisherdev/onboarding/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// toSettingsViewModel converts the stored configuration for display. The
// password itself never reaches the page.
func toSettingsViewModel(cfg model.Configuration) vm.SettingsViewModel {
	entries := make([]vm.EntryViewModel, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		entries = append(entries, vm.EntryViewModel{ID: e.ID, Name: e.Name})
	}

	return vm.SettingsViewModel{
		Name:            cfg.Name,
		Description:     cfg.Description,
		DescriptionHTML: RenderMarkdown(cfg.Description),
		URL:             cfg.URL,
		Username:        cfg.Username,
		PasswordSet:     !cfg.Password.IsEmpty(),
		Entries:         entries,
	}
}

// withSubmittedForm overlays a rejected submission onto m so the
// administrator does not lose what they typed.
func withSubmittedForm(m vm.SettingsViewModel, form model.ConfigurationForm) vm.SettingsViewModel {
	m.Name = form.Name
	m.Description = form.Description
	m.DescriptionHTML = RenderMarkdown(form.Description)
	m.URL = form.URL
	m.Username = form.Username
	if form.Entries != nil {
		m.Entries = make([]vm.EntryViewModel, 0, len(form.Entries))
		for _, c := range form.Entries {
			m.Entries = append(m.Entries, vm.EntryViewModel{ID: c.ID, Name: c.Name})
		}
	}
	return m
}

// flashFor turns a service error into a flash message and, for bind
// failures, a field error.
func flashFor(err error) (*vm.Flash, map[string]string) {
	var (
		cbErr  *application.CallbackError
		cfgErr *application.ConfigurationError
		valErr *model.ValidationError
	)

	switch {
	case errors.As(err, &cbErr):
		return &vm.Flash{Kind: vm.FlashError, Message: cbErr.Message}, nil
	case errors.As(err, &cfgErr):
		msg := cfgErr.Err.Error()
		if errors.As(cfgErr.Err, &valErr) {
			msg = valErr.Message
		}
		return &vm.Flash{Kind: vm.FlashError, Message: "Configuration not saved"}, map[string]string{cfgErr.Field: msg}
	default:
		return &vm.Flash{Kind: vm.FlashError, Message: "Something went wrong. Check the server log."}, nil
	}
}
