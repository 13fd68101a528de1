package httphandler

import (
	"net/http"
)

// ListEntries returns the configured entries in order.
func (h *Handler) ListEntries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toEntryResponses(h.configSvc.Entries()))
}

// ReplaceEntries replaces the whole entry list. Rows carrying an existing id
// keep it; a null entries field changes nothing.
func (h *Handler) ReplaceEntries(w http.ResponseWriter, r *http.Request) {
	var req ReplaceEntriesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entries, err := h.configSvc.SetEntries(r.Context(), toCandidates(req.Entries))
	if err != nil {
		h.writeServiceError(w, err, "failed to replace entries")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

// AddEntry appends one entry.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.configSvc.AddEntry(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, err, "failed to add entry")
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// RenameEntry changes the name of an entry, keeping its id.
func (h *Handler) RenameEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.configSvc.RenameEntry(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		h.writeServiceError(w, err, "failed to rename entry")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// RemoveEntry deletes an entry.
func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.configSvc.RemoveEntry(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "failed to remove entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories returns the entry names offered for step selection.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	names := h.configSvc.Categories()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: names})
}

// RunStep executes the onboarding step for the requested category.
func (h *Handler) RunStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.configSvc.RunStep(r.Context(), req.Category)
	if err != nil {
		h.writeServiceError(w, err, "failed to run step")
		return
	}

	writeJSON(w, http.StatusOK, StepResponse{Category: res.Category, Message: res.Message})
}
