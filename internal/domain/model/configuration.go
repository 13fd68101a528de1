package model

// Configuration is the process-wide onboarding configuration: the callback
// endpoint, its Basic Auth credentials, and the ordered category entries.
type Configuration struct {
	Name        string // letters and spaces only
	Description string
	URL         string
	Username    string // letters only
	Password    Secret
	Entries     []Entry
}

// Clone returns a copy of c whose Entries slice does not alias c's.
func (c Configuration) Clone() Configuration {
	out := c
	if c.Entries != nil {
		out.Entries = make([]Entry, len(c.Entries))
		copy(out.Entries, c.Entries)
	}
	return out
}

// ConfigurationForm is a whole-form submission of the configuration page.
// A nil Password keeps the stored password; a nil Entries keeps the stored
// entries.
type ConfigurationForm struct {
	Name        string
	Description string
	URL         string
	Username    string
	Password    *string
	Entries     []EntryCandidate
}
