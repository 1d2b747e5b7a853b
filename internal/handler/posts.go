package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/postdesk/internal/bindings"
	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
	"github.com/itchan-dev/postdesk/internal/logger"
)

func draftFromForm(r *http.Request) domain.PostDraft {
	return domain.PostDraft{
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
		Category: r.PostFormValue("category"),
	}
}

// CreatePost handles the new post form. A "key" field turns the request into a
// keypress, which only submits on Enter without Shift.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", flashCookieError, "Invalid form data.")
		return
	}

	e := bindings.Event{Intent: bindings.Submit, Draft: draftFromForm(r)}
	if r.PostForm.Has("key") {
		shift, _ := strconv.ParseBool(r.PostFormValue("shift"))
		e = bindings.Event{Intent: bindings.Keypress, Key: r.PostFormValue("key"), Shift: shift, Draft: e.Draft}
	}
	h.dispatchAndRedirect(w, r, e, "/")
}

// EditPost opens the edit dialog for a post.
func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	h.dispatchAndRedirect(w, r, bindings.Event{Intent: bindings.Edit, PostId: chi.URLParam(r, "id")}, "/")
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.dispatchAndRedirect(w, r, bindings.Event{Intent: bindings.Delete, PostId: chi.URLParam(r, "id")}, "/")
}

func (h *Handler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", flashCookieError, "Invalid form data.")
		return
	}
	h.dispatchAndRedirect(w, r, bindings.Event{Intent: bindings.Save, Draft: draftFromForm(r)}, "/")
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.dispatchAndRedirect(w, r, bindings.Event{Intent: bindings.Cancel}, "/")
}

// ToggleTheme flips the theme and returns to the page it was clicked on.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if r.PostFormValue("return_to") == "/feed" {
		target = "/feed"
	}
	h.dispatchAndRedirect(w, r, bindings.Event{Intent: bindings.Theme}, target)
}

// dispatchAndRedirect follows every form post with a redirect, so reloading the
// page never repeats an action. Errors travel to the next page as a flash message.
func (h *Handler) dispatchAndRedirect(w http.ResponseWriter, r *http.Request, e bindings.Event, target string) {
	_, err := h.controller.Dispatch(e)
	switch {
	case err == nil:
		http.Redirect(w, r, target, http.StatusSeeOther)
	case internal_errors.IsWarning(err):
		h.redirectWithFlash(w, r, target, flashCookieWarning, userMessage(err))
	default:
		if internal_errors.StatusCode(err) >= http.StatusInternalServerError {
			logger.Log.Error("event failed", "intent", e.Intent, "error", err)
		}
		h.redirectWithFlash(w, r, target, flashCookieError, userMessage(err))
	}
}
