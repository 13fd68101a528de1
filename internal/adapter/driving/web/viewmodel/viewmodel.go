// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// FlashKind selects the styling of a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown above the settings form.
type Flash struct {
	Kind    FlashKind
	Message string
}

// EntryViewModel is one editable row of the entry list.
type EntryViewModel struct {
	ID   string
	Name string
}

// SettingsViewModel holds everything the settings page renders.
type SettingsViewModel struct {
	Name            string
	Description     string
	DescriptionHTML string // sanitized
	URL             string
	Username        string
	PasswordSet     bool
	Entries         []EntryViewModel

	CSRFToken   string
	Flash       *Flash
	FieldErrors map[string]string // keyed by form field name
}

// FieldError returns the error message for field, or "".
func (vm SettingsViewModel) FieldError(field string) string {
	if vm.FieldErrors == nil {
		return ""
	}
	return vm.FieldErrors[field]
}
