package http

import (
	"net/http"

	"github.com/harborlabs/contact-directory/internal/application"
)

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListContacts(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_contacts", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathUUID(r, "id")
	if err != nil {
		writeMappedError(r.Context(), w, "get_contact", err)
		return
	}

	res, err := h.service.GetContact(r.Context(), contactID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_contact", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req application.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_contact", err)
		return
	}

	res, err := h.service.CreateContact(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_contact", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathUUID(r, "id")
	if err != nil {
		writeMappedError(r.Context(), w, "update_contact", err)
		return
	}

	var req application.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_contact", err)
		return
	}

	if _, err := h.service.UpdateContact(r.Context(), contactID, req); err != nil {
		writeMappedError(r.Context(), w, "update_contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathUUID(r, "id")
	if err != nil {
		writeMappedError(r.Context(), w, "delete_contact", err)
		return
	}

	if err := h.service.DeleteContact(r.Context(), contactID); err != nil {
		writeMappedError(r.Context(), w, "delete_contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
