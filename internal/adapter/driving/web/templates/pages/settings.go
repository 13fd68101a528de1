// Package pages contains the full-page templ components.
package pages

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/onboarding/internal/adapter/driving/web/viewmodel"
)

// Settings renders the onboarding configuration form.
func Settings(m vm.SettingsViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<h1>Onboarding</h1>`)
		if m.Flash != nil {
			b.WriteString(`<div class="flash flash-` + templ.EscapeString(string(m.Flash.Kind)) + `" role="status">`)
			b.WriteString(templ.EscapeString(m.Flash.Message))
			b.WriteString(`</div>`)
		}
		if m.DescriptionHTML != "" {
			b.WriteString(`<section class="description">` + m.DescriptionHTML + `</section>`)
		}

		b.WriteString(`<form method="post" action="/settings" class="settings">`)
		hidden(&b, "csrf_token", m.CSRFToken)
		textField(&b, m, "name", "Name", "text", m.Name)

		b.WriteString(`<label for="description">Description</label>`)
		b.WriteString(`<textarea id="description" name="description" rows="4">`)
		b.WriteString(templ.EscapeString(m.Description))
		b.WriteString(`</textarea>`)

		textField(&b, m, "url", "Callback URL", "url", m.URL)
		textField(&b, m, "username", "Username", "text", m.Username)

		placeholder := ""
		if m.PasswordSet {
			placeholder = "unchanged"
		}
		b.WriteString(`<label for="password">Password</label>`)
		b.WriteString(`<input id="password" name="password" type="password" autocomplete="new-password" placeholder="` +
			templ.EscapeString(placeholder) + `">`)

		b.WriteString(`<fieldset class="entries"><legend>Entries</legend>`)
		hidden(&b, "entries_present", "1")
		for i, e := range m.Entries {
			field := entryField(i)
			b.WriteString(`<div class="entry">`)
			hidden(&b, "entry_id", e.ID)
			b.WriteString(`<input name="entry_name" type="text" value="` + templ.EscapeString(e.Name) + `" aria-label="Entry name">`)
			fieldError(&b, m.FieldError(field))
			b.WriteString(`</div>`)
		}
		b.WriteString(`<div class="entry entry-new">`)
		hidden(&b, "entry_id", "")
		b.WriteString(`<input name="entry_name" type="text" placeholder="Add entry" aria-label="New entry name">`)
		b.WriteString(`</div></fieldset>`)

		b.WriteString(`<div class="actions">`)
		b.WriteString(`<button type="submit">Save</button>`)
		b.WriteString(`<button type="submit" formaction="/settings/test-connection">Test Connection</button>`)
		b.WriteString(`</div></form>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func textField(b *strings.Builder, m vm.SettingsViewModel, name, label, typ, value string) {
	b.WriteString(`<label for="` + name + `">` + templ.EscapeString(label) + `</label>`)
	b.WriteString(`<input id="` + name + `" name="` + name + `" type="` + typ + `" value="` + templ.EscapeString(value) + `">`)
	fieldError(b, m.FieldError(name))
}

func hidden(b *strings.Builder, name, value string) {
	b.WriteString(`<input type="hidden" name="` + name + `" value="` + templ.EscapeString(value) + `">`)
}

func fieldError(b *strings.Builder, msg string) {
	if msg == "" {
		return
	}
	b.WriteString(`<p class="field-error">` + templ.EscapeString(msg) + `</p>`)
}

// entryField is the FieldErrors key for the i-th entry row.
func entryField(i int) string {
	return "entries[" + strconv.Itoa(i) + "].name"
}
