package model

// Entry is a named onboarding category. ID is minted once when the entry is
// created and never reused; Name need not be unique.
type Entry struct {
	ID   string
	Name string
}

// EntryCandidate is a row submitted for the entry list. ID is empty for rows
// the administrator just added and carries the existing ID for rows that were
// kept or renamed.
type EntryCandidate struct {
	ID   string
	Name string
}
